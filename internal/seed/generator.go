package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

var departments = []string{"Sales", "Marketing", "Engineering", "HR", "Support", "Finance"}

var jobTitlesPerDept = map[string][]string{
	"Sales":       {"Sales Manager", "Sales Representative", "Account Executive"},
	"Marketing":   {"Marketing Manager", "Marketing Specialist", "Content Creator"},
	"Engineering": {"Software Engineer", "Senior Engineer", "Tech Lead", "Engineering Manager"},
	"HR":          {"HR Manager", "HR Specialist", "Recruiter"},
	"Support":     {"Support Agent", "Support Lead", "Customer Success Manager"},
	"Finance":     {"Accountant", "Financial Analyst", "Controller"},
}

var productCategories = []string{"Electronics", "Books", "Clothing", "Home & Kitchen", "Sports & Outdoors", "Toys & Games"}

var orderStatuses = []string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"}

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Carlos", "Karen", "Daniel", "Nancy", "Matthew", "Lisa",
	"Anthony", "Margaret", "Priya", "Sandra", "Mark", "Ashley", "Wei", "Kimberly",
	"Steven", "Emily", "Andrew", "Donna", "Kenji", "Michelle", "Joshua", "Carol",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
	"Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
}

var streetNames = []string{
	"Maple Street", "Oak Avenue", "Cedar Lane", "Pine Road", "Elm Drive",
	"Washington Boulevard", "Lakeview Terrace", "Sunset Way", "Hillcrest Court",
	"River Bend Road", "Meadow Lane", "Birch Street", "Chestnut Avenue",
}

var cities = []string{
	"Springfield", "Riverton", "Fairview", "Georgetown", "Clinton", "Salem",
	"Madison", "Franklin", "Arlington", "Ashland", "Dover", "Milton", "Oakdale",
}

var stateCodes = []string{
	"AL", "AZ", "CA", "CO", "FL", "GA", "IL", "IN", "MA", "MD", "MI", "MN",
	"NC", "NJ", "NY", "OH", "OR", "PA", "TX", "VA", "WA", "WI",
}

var productAdjectives = []string{
	"Ergonomic", "Rustic", "Intelligent", "Gorgeous", "Incredible", "Fantastic",
	"Practical", "Sleek", "Awesome", "Generic", "Handcrafted", "Licensed",
	"Refined", "Unbranded", "Small", "Lightweight", "Aerodynamic", "Durable",
}

var productMaterials = []string{
	"Steel", "Wooden", "Concrete", "Plastic", "Cotton", "Granite", "Rubber",
	"Leather", "Silk", "Wool", "Linen", "Marble", "Iron", "Bronze", "Copper",
}

var productNouns = []string{
	"Chair", "Car", "Computer", "Keyboard", "Mouse", "Bike", "Ball", "Gloves",
	"Pants", "Shirt", "Table", "Shoes", "Hat", "Towels", "Soap", "Tuna",
	"Chicken", "Fish", "Cheese", "Bacon", "Pizza", "Salad", "Sausages", "Chips",
}

type Employee struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	HireDate   string
	JobTitle   string
	Department string
	Salary     float64
	ManagerID  *int64
}

type Customer struct {
	ID               int64
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Address          string
	City             string
	State            string
	ZipCode          string
	RegistrationDate string
}

type Product struct {
	ID            int64
	Name          string
	Category      string
	UnitPrice     float64
	StockQuantity int
}

type Order struct {
	ID         int64
	CustomerID int64
	EmployeeID *int64
	OrderDate  string
	Status     string
	Items      []OrderItem
}

type OrderItem struct {
	ProductID       int64
	Quantity        int
	PriceAtPurchase float64
}

// Generator produces mock office records. The same seed always yields the
// same sequence of records.
type Generator struct {
	rnd       *rand.Rand
	now       func() time.Time
	emailSeen map[string]int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd:       rand.New(rand.NewSource(seed)),
		now:       func() time.Time { return time.Now().UTC() },
		emailSeen: map[string]int{},
	}
}

func (g *Generator) NextEmployee() Employee {
	dept := pickOne(g.rnd, departments)
	jobTitle := pickOne(g.rnd, jobTitlesPerDept[dept])

	salaryBase := 50000.0
	if strings.Contains(jobTitle, "Manager") {
		salaryBase += 30000
	}
	if strings.Contains(jobTitle, "Senior") || strings.Contains(jobTitle, "Lead") {
		salaryBase += 20000
	}
	switch dept {
	case "Engineering":
		salaryBase += 10000
	case "Sales":
		salaryBase += 5000
	}

	first := pickOne(g.rnd, firstNames)
	last := pickOne(g.rnd, lastNames)
	return Employee{
		FirstName:  first,
		LastName:   last,
		Email:      g.uniqueEmail(first, last),
		Phone:      g.phoneNumber(),
		HireDate:   g.dateWithin(5 * 365),
		JobTitle:   jobTitle,
		Department: dept,
		Salary:     round2(salaryBase*0.8 + g.rnd.Float64()*salaryBase*0.4),
	}
}

func (g *Generator) NextCustomer() Customer {
	first := pickOne(g.rnd, firstNames)
	last := pickOne(g.rnd, lastNames)
	return Customer{
		FirstName:        first,
		LastName:         last,
		Email:            g.uniqueEmail(first, last),
		Phone:            g.phoneNumber(),
		Address:          fmt.Sprintf("%d %s", g.rnd.Intn(9899)+100, pickOne(g.rnd, streetNames)),
		City:             pickOne(g.rnd, cities),
		State:            pickOne(g.rnd, stateCodes),
		ZipCode:          fmt.Sprintf("%05d", g.rnd.Intn(90000)+10000),
		RegistrationDate: g.dateWithin(3 * 365),
	}
}

func (g *Generator) NextProduct() Product {
	name := fmt.Sprintf("%s %s %s",
		pickOne(g.rnd, productAdjectives),
		pickOne(g.rnd, productMaterials),
		pickOne(g.rnd, productNouns),
	)
	return Product{
		Name:          name,
		Category:      pickOne(g.rnd, productCategories),
		UnitPrice:     round2(5 + g.rnd.Float64()*495),
		StockQuantity: g.rnd.Intn(1001),
	}
}

// NextOrder builds an order against already inserted customers, products and
// sales staff. Each order carries one to five distinct products.
func (g *Generator) NextOrder(customerIDs []int64, salesEmployeeIDs []int64, products []Product) Order {
	order := Order{
		CustomerID: customerIDs[g.rnd.Intn(len(customerIDs))],
		OrderDate:  g.dateTimeWithin(2 * 365),
		Status:     pickOne(g.rnd, orderStatuses),
	}
	if len(salesEmployeeIDs) > 0 {
		id := salesEmployeeIDs[g.rnd.Intn(len(salesEmployeeIDs))]
		order.EmployeeID = &id
	}

	itemCount := g.rnd.Intn(5) + 1
	if itemCount > len(products) {
		itemCount = len(products)
	}
	for _, idx := range g.rnd.Perm(len(products))[:itemCount] {
		order.Items = append(order.Items, OrderItem{
			ProductID:       products[idx].ID,
			Quantity:        g.rnd.Intn(10) + 1,
			PriceAtPurchase: products[idx].UnitPrice,
		})
	}
	return order
}

// PickManager assigns a manager for the employee at index idx: a manager in
// the same department when one exists, else any manager, else any colleague.
func (g *Generator) PickManager(employees []Employee, idx int) *int64 {
	if len(employees) < 2 {
		return nil
	}

	var deptManagers, anyManagers, colleagues []int64
	for i, candidate := range employees {
		if i == idx {
			continue
		}
		colleagues = append(colleagues, candidate.ID)
		if !strings.Contains(candidate.JobTitle, "Manager") {
			continue
		}
		anyManagers = append(anyManagers, candidate.ID)
		if candidate.Department == employees[idx].Department {
			deptManagers = append(deptManagers, candidate.ID)
		}
	}

	pool := deptManagers
	if len(pool) == 0 {
		pool = anyManagers
	}
	if len(pool) == 0 {
		pool = colleagues
	}
	if len(pool) == 0 {
		return nil
	}
	id := pool[g.rnd.Intn(len(pool))]
	return &id
}

func (g *Generator) uniqueEmail(first, last string) string {
	base := strings.ToLower(first + "." + last)
	g.emailSeen[base]++
	if n := g.emailSeen[base]; n > 1 {
		return fmt.Sprintf("%s%d@example.com", base, n)
	}
	return base + "@example.com"
}

func (g *Generator) phoneNumber() string {
	return fmt.Sprintf("(%03d) %03d-%04d", g.rnd.Intn(800)+200, g.rnd.Intn(800)+200, g.rnd.Intn(10000))
}

func (g *Generator) dateWithin(days int) string {
	offset := time.Duration(g.rnd.Intn(days*24)) * time.Hour
	return g.now().Add(-offset).Format("2006-01-02")
}

func (g *Generator) dateTimeWithin(days int) string {
	offset := time.Duration(g.rnd.Int63n(int64(days)*24*3600)) * time.Second
	return g.now().Add(-offset).Format("2006-01-02 15:04:05")
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
