package nlq

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/officeql/officeql/internal/executor"
)

// NoRecordsMarker is rendered into the synthesis prompt (and the response
// envelope) when a query legitimately matches nothing.
const NoRecordsMarker = "No matching records found."

// MaxPromptRows caps how many result rows are rendered into the synthesis
// prompt to bound its size.
const MaxPromptRows = 20

const generationTemplate = `You are an expert SQLite SQL query writer. Your task is to generate a valid SQLite SQL query
based on the provided database schema and a natural language question.

Database Schema:
{schema}

Guidelines:
1.  Only use tables and columns defined in the schema.
2.  If the question involves dates, use SQLite date functions like strftime, date, datetime.
    Pay close attention to the date formats mentioned in the schema notes.
3.  For temporal references like "last year", "next month", "Q1 2023", "yesterday":
    - Assume the current date is {current_date}.
    - "last year": strftime('%Y', date_column) = '{last_year_yyyy}'
    - "this year": strftime('%Y', date_column) = '{current_year_yyyy}'
    - "Q1 YYYY": date_column BETWEEN 'YYYY-01-01' AND 'YYYY-03-31' (adjust for other quarters)
    - "last 30 days": date_column >= date('now', '-30 days')
    - "yesterday": date(date_column) = date('now', '-1 day')
4.  If a JOIN is required, ensure the JOIN condition is correct based on the schema's foreign keys.
5.  For aggregations (SUM, AVG, COUNT), make sure to GROUP BY an appropriate column if needed.
6.  If the question is ambiguous or lacks information for a precise query, make a reasonable assumption and generate the best possible query.
7.  Return ONLY the SQL query. Do not add any explanations, introductory text, or markdown formatting like ` + "```sql ... ```" + `.

Examples:
Question: "How many customers do we have?"
SQL: SELECT COUNT(customer_id) FROM customers;

Question: "What are the names of employees in the Sales department hired last year?"
SQL: SELECT first_name, last_name FROM employees WHERE department = 'Sales' AND strftime('%Y', hire_date) = '{last_year_yyyy}';

Question: "Total sales amount for product 'SuperWidget' in Q2 2023?"
SQL: SELECT SUM(oi.quantity * oi.price_at_purchase) FROM order_items oi JOIN products p ON oi.product_id = p.product_id JOIN orders o ON oi.order_id = o.order_id WHERE p.product_name = 'SuperWidget' AND o.order_date BETWEEN '2023-04-01 00:00:00' AND '2023-06-30 23:59:59';

Question: "List all products in the 'Electronics' category."
SQL: SELECT product_name, unit_price FROM products WHERE category = 'Electronics';

Question: "Who are the top 3 highest paid employees?"
SQL: SELECT first_name, last_name, salary FROM employees ORDER BY salary DESC LIMIT 3;

Question: {question}
SQL:`

const synthesisTemplate = `You are an AI assistant that synthesizes human-readable answers from SQL query results.
Based on the original question, the generated SQL query, and the query results, provide a concise and natural language answer.

Original Question: {question}
Generated SQL Query: {sql_query}
Query Results:
{results}

Important considerations:
- If the results are empty, state that no matching records were found or the query returned no data.
- If there's an error in the results (e.g., an error message instead of data), mention the error.
- If the results are a single number (e.g., from COUNT, SUM, AVG), state it clearly. Example: "There are X items." or "The total Y is Z."
- If the results are a list of items, summarize them or list a few if appropriate. Avoid just dumping a large table.
- Be polite and helpful.

Natural Language Answer:`

type GenerationPromptInput struct {
	Schema   string
	Question string
	Now      time.Time
}

// RenderGenerationPrompt fills the SQL-generation template with the schema,
// the question, and date literals computed from Now.
func RenderGenerationPrompt(in GenerationPromptInput) string {
	return strings.NewReplacer(
		"{schema}", in.Schema,
		"{question}", in.Question,
		"{current_date}", in.Now.Format("2006-01-02"),
		"{current_year_yyyy}", in.Now.Format("2006"),
		"{last_year_yyyy}", strconv.Itoa(in.Now.Year()-1),
	).Replace(generationTemplate)
}

type SynthesisPromptInput struct {
	Question string
	SQL      string
	Results  string
}

func RenderSynthesisPrompt(in SynthesisPromptInput) string {
	return strings.NewReplacer(
		"{question}", in.Question,
		"{sql_query}", in.SQL,
		"{results}", in.Results,
	).Replace(synthesisTemplate)
}

// RenderResults produces the results block of the synthesis prompt: the
// execution error as prose when one occurred, a no-records marker for empty
// results, otherwise up to MaxPromptRows rows as indented JSON with a trailer
// counting what was omitted.
func RenderResults(rows []executor.Row, executionError string) string {
	if executionError != "" {
		return "An error occurred during SQL execution: " + executionError
	}
	if len(rows) == 0 {
		return NoRecordsMarker
	}

	capped := rows
	omitted := 0
	if len(rows) > MaxPromptRows {
		capped = rows[:MaxPromptRows]
		omitted = len(rows) - MaxPromptRows
	}
	encoded, err := json.MarshalIndent(capped, "", "  ")
	if err != nil {
		return fmt.Sprintf("(failed to render %d result rows: %v)", len(rows), err)
	}
	if omitted > 0 {
		return string(encoded) + fmt.Sprintf("\n... (and %d more rows)", omitted)
	}
	return string(encoded)
}

// CleanSQL strips a leading markdown code fence (with or without a sql tag)
// and a trailing fence from raw model output, then trims whitespace.
func CleanSQL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```sql") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSpace(trimmed)
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
	}
	return strings.TrimSpace(trimmed)
}
