package nlq

import (
	"context"
	"time"

	"github.com/officeql/officeql/internal/llm"
	"github.com/officeql/officeql/internal/observability"
)

// Generator turns a natural language question into a single SQLite statement
// with one model call. No retry is attempted; a failure ends the stage.
type Generator struct {
	completer llm.Completer
	now       func() time.Time
}

func NewGenerator(completer llm.Completer) *Generator {
	return &Generator{completer: completer, now: time.Now}
}

// Generate renders the generation prompt and returns the fence-stripped model
// output. An empty result with a nil error is possible and is the caller's
// concern.
func (g *Generator) Generate(ctx context.Context, question, schemaText string) (string, error) {
	prompt := RenderGenerationPrompt(GenerationPromptInput{
		Schema:   schemaText,
		Question: question,
		Now:      g.now(),
	})

	start := time.Now()
	raw, err := g.completer.Complete(ctx, prompt)
	observability.ObserveModelCall("generation", time.Since(start))
	if err != nil {
		return "", err
	}
	return CleanSQL(raw), nil
}
