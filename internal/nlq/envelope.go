package nlq

import "github.com/officeql/officeql/internal/executor"

// IntermediateSteps carries every artifact the pipeline produced for one
// question, successful or not.
type IntermediateSteps struct {
	RelevantSchema    string         `json:"relevant_schema"`
	GeneratedSQLQuery *string        `json:"generated_sql_query"`
	ResultRows        []executor.Row `json:"result_rows"`
	ExecutionError    string         `json:"execution_error,omitempty"`
	ExecutionMessage  string         `json:"execution_message,omitempty"`
	SynthesisError    string         `json:"synthesis_error,omitempty"`
}

// Envelope is the complete per-question response. It is filled incrementally
// as stages complete and never mutated after the pipeline returns it.
type Envelope struct {
	NaturalLanguageAnswer *string           `json:"natural_language_answer"`
	IntermediateSteps     IntermediateSteps `json:"intermediate_steps"`
	ErrorMessage          *string           `json:"error_message"`
}

func stringPtr(value string) *string {
	return &value
}
