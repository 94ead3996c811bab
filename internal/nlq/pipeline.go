// Package nlq implements the question answering pipeline: schema lookup, SQL
// generation, query execution, and answer synthesis, sequenced per request.
package nlq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/officeql/officeql/internal/executor"
	"github.com/officeql/officeql/internal/observability"
	"github.com/officeql/officeql/internal/schema"
)

type SchemaProvider interface {
	Describe(ctx context.Context) (string, error)
}

type QueryExecutor interface {
	Execute(ctx context.Context, sqlText string) ([]executor.Row, error)
}

type SQLGenerator interface {
	Generate(ctx context.Context, question, schemaText string) (string, error)
}

type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question, sqlText string, rows []executor.Row, executionError string) (string, error)
}

// Pipeline sequences the four stages for one question. The stages run
// strictly in order; nothing is retried or cached across requests.
type Pipeline struct {
	Schema      SchemaProvider
	Generator   SQLGenerator
	Executor    QueryExecutor
	Synthesizer AnswerSynthesizer
	Logger      *slog.Logger
}

// Ask runs the full pipeline for one question. The returned error classifies
// the terminal failures (schema unavailable, generation failed, empty SQL,
// execution failed, unexpected); a synthesis failure is degraded but not
// terminal, so the error is nil and the envelope carries a fallback answer.
// Panics from any stage are recovered here and reported as unexpected.
func (p *Pipeline) Ask(ctx context.Context, question string) (env Envelope, err error) {
	env.IntermediateSteps.ResultRows = []executor.Row{}

	defer func() {
		if recovered := recover(); recovered != nil {
			err = &UnexpectedError{Err: fmt.Errorf("%v", recovered)}
			env.ErrorMessage = stringPtr(fmt.Sprintf("An unexpected system error occurred: %v", recovered))
			env.NaturalLanguageAnswer = stringPtr("I encountered an unexpected issue while processing your request.")
			observability.ObserveQuestion("unexpected")
			if p.Logger != nil {
				p.Logger.ErrorContext(ctx, "pipeline panic", slog.Any("panic", recovered))
			}
		}
	}()

	schemaText, err := p.Schema.Describe(ctx)
	if err != nil {
		if errors.Is(err, schema.ErrNoTables) {
			env.ErrorMessage = stringPtr("Error: No tables found in the database.")
		} else {
			env.ErrorMessage = stringPtr(fmt.Sprintf("Schema Error: %v", err))
		}
		observability.ObserveQuestion("schema_unavailable")
		return env, fmt.Errorf("describe schema: %w", err)
	}
	env.IntermediateSteps.RelevantSchema = schemaText

	sqlText, genErr := p.Generator.Generate(ctx, question, schemaText)
	if genErr != nil {
		genFailure := &GenerationError{Err: genErr}
		env.ErrorMessage = stringPtr(genFailure.Error())

		// Best effort: the user still gets prose describing the failure.
		answer, synthErr := p.Synthesizer.Synthesize(ctx, question, "Failed to generate SQL.", nil, genFailure.Error())
		if synthErr != nil || answer == "" {
			answer = "Could not generate SQL due to an error."
		}
		env.NaturalLanguageAnswer = stringPtr(answer)
		observability.ObserveQuestion("generation_failed")
		return env, genFailure
	}
	if sqlText == "" {
		env.ErrorMessage = stringPtr("SQL generation failed to produce a query.")
		env.NaturalLanguageAnswer = stringPtr("I apologize, I couldn't construct a database query for your question.")
		observability.ObserveQuestion("empty_sql")
		return env, ErrEmptySQL
	}
	env.IntermediateSteps.GeneratedSQLQuery = stringPtr(sqlText)

	start := time.Now()
	rows, execErr := p.Executor.Execute(ctx, sqlText)
	if execErr != nil {
		execFailure := &ExecutionError{Err: execErr}
		env.IntermediateSteps.ExecutionError = execErr.Error()
		env.ErrorMessage = stringPtr(execErr.Error())

		answer, synthErr := p.Synthesizer.Synthesize(ctx, question, sqlText, nil, execErr.Error())
		if synthErr != nil || answer == "" {
			answer = "There was an error executing the query."
			if synthErr != nil {
				answer += fmt.Sprintf(" (Synthesis also failed: %v)", synthErr)
			}
		}
		env.NaturalLanguageAnswer = stringPtr(answer)
		observability.ObserveQuestion("execution_failed")
		return env, execFailure
	}
	observability.ObserveQueryExecution(len(rows), time.Since(start))
	env.IntermediateSteps.ResultRows = rows
	if len(rows) == 0 {
		env.IntermediateSteps.ExecutionMessage = NoRecordsMarker
	}
	if p.Logger != nil {
		p.Logger.DebugContext(ctx, "query executed",
			slog.String("sql", sqlText),
			slog.Int("rows", len(rows)),
		)
	}

	answer, synthErr := p.Synthesizer.Synthesize(ctx, question, sqlText, rows, "")
	if synthErr != nil {
		// Degraded success: surface the raw SQL and rows so nothing is lost.
		env.IntermediateSteps.SynthesisError = synthErr.Error()
		env.NaturalLanguageAnswer = stringPtr(fallbackAnswer(sqlText, rows, synthErr))
		observability.ObserveQuestion("degraded_synthesis")
		return env, nil
	}

	env.NaturalLanguageAnswer = stringPtr(answer)
	observability.ObserveQuestion("ok")
	return env, nil
}

func fallbackAnswer(sqlText string, rows []executor.Row, synthErr error) string {
	rendered := "No data."
	if len(rows) > 0 {
		if encoded, err := json.MarshalIndent(rows, "", "  "); err == nil {
			rendered = string(encoded)
		}
	}
	return fmt.Sprintf(
		"Successfully retrieved data, but could not synthesize a natural answer (Error: %v). Query: %s. Results: %s",
		synthErr, sqlText, rendered,
	)
}
