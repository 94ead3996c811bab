package nlq

import (
	"context"
	"strings"
	"time"

	"github.com/officeql/officeql/internal/executor"
	"github.com/officeql/officeql/internal/llm"
	"github.com/officeql/officeql/internal/observability"
)

// Synthesizer phrases query results (or a failure description) as a natural
// language answer with one model call.
type Synthesizer struct {
	completer llm.Completer
}

func NewSynthesizer(completer llm.Completer) *Synthesizer {
	return &Synthesizer{completer: completer}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question, sqlText string, rows []executor.Row, executionError string) (string, error) {
	prompt := RenderSynthesisPrompt(SynthesisPromptInput{
		Question: question,
		SQL:      sqlText,
		Results:  RenderResults(rows, executionError),
	})

	start := time.Now()
	answer, err := s.completer.Complete(ctx, prompt)
	observability.ObserveModelCall("synthesis", time.Since(start))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
