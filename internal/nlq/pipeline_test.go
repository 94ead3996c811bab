package nlq

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/officeql/officeql/internal/executor"
	"github.com/officeql/officeql/internal/schema"
)

type fakeSchema struct {
	text string
	err  error
}

func (f *fakeSchema) Describe(context.Context) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	sql   string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.sql, f.err
}

type fakeExecutor struct {
	rows  []executor.Row
	err   error
	calls int
	sql   string
}

func (f *fakeExecutor) Execute(_ context.Context, sqlText string) ([]executor.Row, error) {
	f.calls++
	f.sql = sqlText
	return f.rows, f.err
}

type fakeSynthesizer struct {
	answer string
	err    error
	calls  int
	inputs []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _, sqlText string, _ []executor.Row, executionError string) (string, error) {
	f.calls++
	f.inputs = append(f.inputs, sqlText+"|"+executionError)
	return f.answer, f.err
}

func countRow(n int) executor.Row {
	return executor.NewRow([]string{"COUNT(customer_id)"}, map[string]any{"COUNT(customer_id)": n})
}

func TestAskHappyPath(t *testing.T) {
	gen := &fakeGenerator{sql: "SELECT COUNT(customer_id) FROM customers;"}
	exec := &fakeExecutor{rows: []executor.Row{countRow(200)}}
	synth := &fakeSynthesizer{answer: "There are 200 customers."}
	p := &Pipeline{
		Schema:      &fakeSchema{text: "CREATE TABLE customers (customer_id INTEGER)"},
		Generator:   gen,
		Executor:    exec,
		Synthesizer: synth,
	}

	env, err := p.Ask(context.Background(), "How many customers do we have?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if env.NaturalLanguageAnswer == nil || !strings.Contains(*env.NaturalLanguageAnswer, "200") {
		t.Fatalf("answer = %v", env.NaturalLanguageAnswer)
	}
	if env.ErrorMessage != nil {
		t.Fatalf("error_message = %q", *env.ErrorMessage)
	}
	if env.IntermediateSteps.GeneratedSQLQuery == nil || *env.IntermediateSteps.GeneratedSQLQuery != gen.sql {
		t.Fatalf("generated_sql_query = %v", env.IntermediateSteps.GeneratedSQLQuery)
	}
	if len(env.IntermediateSteps.ResultRows) != 1 {
		t.Fatalf("result_rows = %#v", env.IntermediateSteps.ResultRows)
	}
	if exec.sql != gen.sql {
		t.Fatalf("executed sql = %q", exec.sql)
	}
}

func TestAskSchemaUnavailableShortCircuits(t *testing.T) {
	gen := &fakeGenerator{}
	synth := &fakeSynthesizer{}
	p := &Pipeline{
		Schema:      &fakeSchema{err: schema.ErrNoTables},
		Generator:   gen,
		Executor:    &fakeExecutor{},
		Synthesizer: synth,
	}

	env, err := p.Ask(context.Background(), "anything")
	if !errors.Is(err, schema.ErrNoTables) {
		t.Fatalf("Ask() error = %v", err)
	}
	if env.ErrorMessage == nil || !strings.Contains(*env.ErrorMessage, "No tables") {
		t.Fatalf("error_message = %v", env.ErrorMessage)
	}
	if gen.calls != 0 || synth.calls != 0 {
		t.Fatalf("model calls after schema failure: gen=%d synth=%d", gen.calls, synth.calls)
	}
}

func TestAskGenerationFailureStillSynthesizesProse(t *testing.T) {
	synth := &fakeSynthesizer{answer: "I could not build a query for that."}
	exec := &fakeExecutor{}
	p := &Pipeline{
		Schema:      &fakeSchema{text: "schema"},
		Generator:   &fakeGenerator{err: errors.New("model timeout")},
		Executor:    exec,
		Synthesizer: synth,
	}

	env, err := p.Ask(context.Background(), "q")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Ask() error = %v, want GenerationError", err)
	}
	if env.ErrorMessage == nil || !strings.Contains(*env.ErrorMessage, "model timeout") {
		t.Fatalf("error_message = %v", env.ErrorMessage)
	}
	if env.NaturalLanguageAnswer == nil || *env.NaturalLanguageAnswer != synth.answer {
		t.Fatalf("answer = %v", env.NaturalLanguageAnswer)
	}
	if exec.calls != 0 {
		t.Fatal("executor must not run after generation failure")
	}
	if env.IntermediateSteps.GeneratedSQLQuery != nil {
		t.Fatalf("generated_sql_query = %v", env.IntermediateSteps.GeneratedSQLQuery)
	}
}

func TestAskGenerationFailureWithSynthesisFailureFallsBack(t *testing.T) {
	p := &Pipeline{
		Schema:      &fakeSchema{text: "schema"},
		Generator:   &fakeGenerator{err: errors.New("boom")},
		Executor:    &fakeExecutor{},
		Synthesizer: &fakeSynthesizer{err: errors.New("also down")},
	}

	env, err := p.Ask(context.Background(), "q")
	if err == nil {
		t.Fatal("expected terminal error")
	}
	if env.NaturalLanguageAnswer == nil || *env.NaturalLanguageAnswer != "Could not generate SQL due to an error." {
		t.Fatalf("answer = %v", env.NaturalLanguageAnswer)
	}
}

func TestAskEmptySQLIsTerminal(t *testing.T) {
	exec := &fakeExecutor{}
	p := &Pipeline{
		Schema:      &fakeSchema{text: "schema"},
		Generator:   &fakeGenerator{sql: ""},
		Executor:    exec,
		Synthesizer: &fakeSynthesizer{},
	}

	env, err := p.Ask(context.Background(), "q")
	if !errors.Is(err, ErrEmptySQL) {
		t.Fatalf("Ask() error = %v, want ErrEmptySQL", err)
	}
	if env.ErrorMessage == nil || *env.ErrorMessage != "SQL generation failed to produce a query." {
		t.Fatalf("error_message = %v", env.ErrorMessage)
	}
	if env.NaturalLanguageAnswer == nil {
		t.Fatal("expected apology answer")
	}
	if exec.calls != 0 {
		t.Fatal("executor must not run for empty SQL")
	}
}

func TestAskExecutionFailureSynthesizesAndTerminates(t *testing.T) {
	synth := &fakeSynthesizer{answer: "The query referenced a column that does not exist."}
	p := &Pipeline{
		Schema:      &fakeSchema{text: "schema"},
		Generator:   &fakeGenerator{sql: "SELECT wrong_col FROM employees"},
		Executor:    &fakeExecutor{err: errors.New("no such column: wrong_col")},
		Synthesizer: synth,
	}

	env, err := p.Ask(context.Background(), "q")
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Ask() error = %v, want ExecutionError", err)
	}
	if env.ErrorMessage == nil || !strings.Contains(*env.ErrorMessage, "no such column") {
		t.Fatalf("error_message = %v", env.ErrorMessage)
	}
	if env.IntermediateSteps.ExecutionError == "" {
		t.Fatal("intermediate execution_error missing")
	}
	if env.NaturalLanguageAnswer == nil || *env.NaturalLanguageAnswer != synth.answer {
		t.Fatalf("answer = %v", env.NaturalLanguageAnswer)
	}
	if len(synth.inputs) != 1 || !strings.Contains(synth.inputs[0], "no such column") {
		t.Fatalf("synthesizer inputs = %#v", synth.inputs)
	}
}

func TestAskEmptyResultIsAnnotatedNotFailed(t *testing.T) {
	p := &Pipeline{
		Schema:      &fakeSchema{text: "schema"},
		Generator:   &fakeGenerator{sql: "SELECT * FROM orders WHERE 1=0"},
		Executor:    &fakeExecutor{rows: []executor.Row{}},
		Synthesizer: &fakeSynthesizer{answer: "No matching orders were found."},
	}

	env, err := p.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if env.IntermediateSteps.ExecutionMessage != NoRecordsMarker {
		t.Fatalf("execution_message = %q", env.IntermediateSteps.ExecutionMessage)
	}
	if env.ErrorMessage != nil {
		t.Fatalf("error_message = %q", *env.ErrorMessage)
	}
}

func TestAskSynthesisFailureIsDegradedSuccess(t *testing.T) {
	p := &Pipeline{
		Schema:      &fakeSchema{text: "schema"},
		Generator:   &fakeGenerator{sql: "SELECT COUNT(customer_id) FROM customers;"},
		Executor:    &fakeExecutor{rows: []executor.Row{countRow(7)}},
		Synthesizer: &fakeSynthesizer{err: errors.New("rate limited")},
	}

	env, err := p.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask() error = %v, synthesis failure must not be terminal", err)
	}
	if env.IntermediateSteps.SynthesisError == "" {
		t.Fatal("synthesis_error note missing")
	}
	if env.NaturalLanguageAnswer == nil {
		t.Fatal("fallback answer missing")
	}
	answer := *env.NaturalLanguageAnswer
	if !strings.Contains(answer, "SELECT COUNT(customer_id) FROM customers;") {
		t.Fatalf("fallback should inline the SQL: %q", answer)
	}
	if !strings.Contains(answer, `"COUNT(customer_id)": 7`) {
		t.Fatalf("fallback should inline the rows: %q", answer)
	}
	if len(env.IntermediateSteps.ResultRows) != 1 {
		t.Fatal("rows must survive synthesis failure")
	}
}

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string, string) (string, error) {
	panic("template exploded")
}

func TestAskRecoversPanicsAsUnexpected(t *testing.T) {
	p := &Pipeline{
		Schema:      &fakeSchema{text: "schema"},
		Generator:   panickingGenerator{},
		Executor:    &fakeExecutor{},
		Synthesizer: &fakeSynthesizer{},
	}

	env, err := p.Ask(context.Background(), "q")
	var unexpected *UnexpectedError
	if !errors.As(err, &unexpected) {
		t.Fatalf("Ask() error = %v, want UnexpectedError", err)
	}
	if env.ErrorMessage == nil || !strings.Contains(*env.ErrorMessage, "template exploded") {
		t.Fatalf("error_message = %v", env.ErrorMessage)
	}
	if env.NaturalLanguageAnswer == nil {
		t.Fatal("expected generic answer after panic")
	}
}
