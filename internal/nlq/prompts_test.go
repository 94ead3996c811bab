package nlq

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/officeql/officeql/internal/executor"
)

func TestCleanSQL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "SELECT 1;", "SELECT 1;"},
		{"sql fence same line", "```sql SELECT 1; ```", "SELECT 1;"},
		{"sql fence multiline", "```sql\nSELECT COUNT(*) FROM orders;\n```", "SELECT COUNT(*) FROM orders;"},
		{"bare fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"surrounding whitespace", "  \n SELECT 1 \n ", "SELECT 1"},
		{"empty after stripping", "```sql\n```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanSQL(tt.raw); got != tt.want {
				t.Fatalf("CleanSQL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRenderGenerationPromptFillsDateLiterals(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	prompt := RenderGenerationPrompt(GenerationPromptInput{
		Schema:   "CREATE TABLE customers (customer_id INTEGER)",
		Question: "How many customers do we have?",
		Now:      now,
	})

	for _, want := range []string{
		"Assume the current date is 2024-03-15.",
		"strftime('%Y', date_column) = '2023'",
		"strftime('%Y', date_column) = '2024'",
		"CREATE TABLE customers (customer_id INTEGER)",
		`Question: How many customers do we have?`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "{") && strings.Contains(prompt, "{schema}") {
		t.Fatal("unreplaced placeholder in prompt")
	}
}

func TestRenderGenerationPromptKeepsWorkedExamples(t *testing.T) {
	prompt := RenderGenerationPrompt(GenerationPromptInput{Schema: "s", Question: "q", Now: time.Now()})
	for _, want := range []string{
		"SELECT COUNT(customer_id) FROM customers;",
		"oi.quantity * oi.price_at_purchase",
		"WHERE category = 'Electronics'",
		"ORDER BY salary DESC LIMIT 3;",
		"department = 'Sales'",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing worked example %q", want)
		}
	}
}

func TestRenderResultsEmptyAndError(t *testing.T) {
	if got := RenderResults(nil, ""); got != NoRecordsMarker {
		t.Fatalf("RenderResults(nil) = %q", got)
	}
	if got := RenderResults([]executor.Row{}, ""); got != NoRecordsMarker {
		t.Fatalf("RenderResults(empty) = %q", got)
	}
	got := RenderResults(nil, "no such table: widgets")
	if got != "An error occurred during SQL execution: no such table: widgets" {
		t.Fatalf("RenderResults(error) = %q", got)
	}
}

func TestRenderResultsCapsAtTwentyRows(t *testing.T) {
	rows := make([]executor.Row, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, executor.NewRow([]string{"order_id"}, map[string]any{"order_id": i}))
	}

	got := RenderResults(rows, "")
	if !strings.HasSuffix(got, "... (and 5 more rows)") {
		t.Fatalf("missing omitted-rows trailer:\n%s", got)
	}
	if count := strings.Count(got, `"order_id"`); count != MaxPromptRows {
		t.Fatalf("rendered %d rows, want %d", count, MaxPromptRows)
	}
	for i := MaxPromptRows; i < 25; i++ {
		if strings.Contains(got, fmt.Sprintf(`"order_id": %d`, i)) {
			t.Fatalf("row %d should have been omitted", i)
		}
	}
}

func TestRenderResultsSmallSetHasNoTrailer(t *testing.T) {
	rows := []executor.Row{executor.NewRow([]string{"n"}, map[string]any{"n": 1})}
	got := RenderResults(rows, "")
	if strings.Contains(got, "more rows") {
		t.Fatalf("unexpected trailer for small result set:\n%s", got)
	}
}

func TestRenderSynthesisPrompt(t *testing.T) {
	prompt := RenderSynthesisPrompt(SynthesisPromptInput{
		Question: "How many orders shipped?",
		SQL:      "SELECT COUNT(*) FROM orders WHERE status = 'Shipped';",
		Results:  `[{"COUNT(*)": 42}]`,
	})
	for _, want := range []string{
		"Original Question: How many orders shipped?",
		"Generated SQL Query: SELECT COUNT(*) FROM orders WHERE status = 'Shipped';",
		`[{"COUNT(*)": 42}]`,
		"Be polite and helpful.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("synthesis prompt missing %q:\n%s", want, prompt)
		}
	}
}
