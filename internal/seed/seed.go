// Package seed fills the office database with generated employees, customers,
// products and orders so the question pipeline has data to answer against.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"
)

type Options struct {
	Employees int
	Customers int
	Products  int
	Orders    int
	Seed      int64
	Now       func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Employees: 50,
		Customers: 200,
		Products:  100,
		Orders:    500,
		Seed:      time.Now().UnixNano(),
	}
}

type Summary struct {
	Employees  int
	Customers  int
	Products   int
	Orders     int
	OrderItems int
}

type Service struct {
	opts Options
	log  *slog.Logger
}

func NewService(opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{opts: opts, log: logger}
}

// Run replaces all office data with a freshly generated set. Everything
// happens in one transaction so a failure leaves the previous data intact.
func (s *Service) Run(ctx context.Context, db *sql.DB) (Summary, error) {
	generator := NewGenerator(s.opts.Seed)
	if s.opts.Now != nil {
		generator.now = s.opts.Now
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearOfficeData(ctx, tx); err != nil {
		return Summary{}, err
	}

	employees, err := s.insertEmployees(ctx, tx, generator)
	if err != nil {
		return Summary{}, err
	}
	customerIDs, err := s.insertCustomers(ctx, tx, generator)
	if err != nil {
		return Summary{}, err
	}
	products, err := s.insertProducts(ctx, tx, generator)
	if err != nil {
		return Summary{}, err
	}
	orderCount, itemCount, err := s.insertOrders(ctx, tx, generator, employees, customerIDs, products)
	if err != nil {
		return Summary{}, err
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("commit seed data: %w", err)
	}

	summary := Summary{
		Employees:  len(employees),
		Customers:  len(customerIDs),
		Products:   len(products),
		Orders:     orderCount,
		OrderItems: itemCount,
	}
	s.log.Info("seed complete",
		slog.Int("employees", summary.Employees),
		slog.Int("customers", summary.Customers),
		slog.Int("products", summary.Products),
		slog.Int("orders", summary.Orders),
		slog.Int("order_items", summary.OrderItems),
	)
	return summary, nil
}

func clearOfficeData(ctx context.Context, tx *sql.Tx) error {
	// Children first so foreign keys never dangle mid-delete.
	for _, table := range []string{"order_items", "orders", "products", "customers", "employees"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear table %s: %w", table, err)
		}
	}
	return nil
}

func (s *Service) insertEmployees(ctx context.Context, tx *sql.Tx, generator *Generator) ([]Employee, error) {
	employees := make([]Employee, 0, s.opts.Employees)
	for i := 0; i < s.opts.Employees; i++ {
		employee := generator.NextEmployee()
		result, err := tx.ExecContext(ctx, `
INSERT INTO employees (first_name, last_name, email, phone_number, hire_date, job_title, department, salary)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			employee.FirstName, employee.LastName, employee.Email, employee.Phone,
			employee.HireDate, employee.JobTitle, employee.Department, employee.Salary,
		)
		if err != nil {
			return nil, fmt.Errorf("insert employee: %w", err)
		}
		employee.ID, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("employee id: %w", err)
		}
		employees = append(employees, employee)
	}

	for i := range employees {
		managerID := generator.PickManager(employees, i)
		if managerID == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE employees SET manager_id = ? WHERE employee_id = ?",
			*managerID, employees[i].ID,
		); err != nil {
			return nil, fmt.Errorf("assign manager: %w", err)
		}
		employees[i].ManagerID = managerID
	}
	return employees, nil
}

func (s *Service) insertCustomers(ctx context.Context, tx *sql.Tx, generator *Generator) ([]int64, error) {
	ids := make([]int64, 0, s.opts.Customers)
	for i := 0; i < s.opts.Customers; i++ {
		customer := generator.NextCustomer()
		result, err := tx.ExecContext(ctx, `
INSERT INTO customers (first_name, last_name, email, phone_number, address, city, state, zip_code, registration_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			customer.FirstName, customer.LastName, customer.Email, customer.Phone,
			customer.Address, customer.City, customer.State, customer.ZipCode,
			customer.RegistrationDate,
		)
		if err != nil {
			return nil, fmt.Errorf("insert customer: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("customer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) insertProducts(ctx context.Context, tx *sql.Tx, generator *Generator) ([]Product, error) {
	products := make([]Product, 0, s.opts.Products)
	for i := 0; i < s.opts.Products; i++ {
		product := generator.NextProduct()
		result, err := tx.ExecContext(ctx, `
INSERT INTO products (product_name, category, unit_price, stock_quantity)
VALUES (?, ?, ?, ?)`,
			product.Name, product.Category, product.UnitPrice, product.StockQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("insert product: %w", err)
		}
		product.ID, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("product id: %w", err)
		}
		products = append(products, product)
	}
	return products, nil
}

func (s *Service) insertOrders(ctx context.Context, tx *sql.Tx, generator *Generator, employees []Employee, customerIDs []int64, products []Product) (int, int, error) {
	if len(customerIDs) == 0 || len(products) == 0 {
		s.log.Warn("skipping orders, no customers or products to link")
		return 0, 0, nil
	}

	var salesIDs []int64
	for _, employee := range employees {
		if employee.Department == "Sales" || employee.Department == "Support" {
			salesIDs = append(salesIDs, employee.ID)
		}
	}
	if len(salesIDs) == 0 {
		for _, employee := range employees {
			salesIDs = append(salesIDs, employee.ID)
		}
	}

	orderCount := 0
	itemCount := 0
	for i := 0; i < s.opts.Orders; i++ {
		order := generator.NextOrder(customerIDs, salesIDs, products)
		result, err := tx.ExecContext(ctx, `
INSERT INTO orders (customer_id, employee_id, order_date, status)
VALUES (?, ?, ?, ?)`,
			order.CustomerID, order.EmployeeID, order.OrderDate, order.Status,
		)
		if err != nil {
			return orderCount, itemCount, fmt.Errorf("insert order: %w", err)
		}
		orderID, err := result.LastInsertId()
		if err != nil {
			return orderCount, itemCount, fmt.Errorf("order id: %w", err)
		}
		orderCount++

		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
VALUES (?, ?, ?, ?)`,
				orderID, item.ProductID, item.Quantity, item.PriceAtPurchase,
			); err != nil {
				return orderCount, itemCount, fmt.Errorf("insert order item: %w", err)
			}
			itemCount++
		}
	}
	return orderCount, itemCount, nil
}
