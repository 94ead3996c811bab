// Package officeqlctl implements the officeqlctl command line client for the
// question-answering API.
package officeqlctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/officeql/officeql/internal/nlq"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	root := newRootCommand(defaults, stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

type runner struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCommand(defaults Options, stdout, stderr io.Writer) *cobra.Command {
	r := &runner{
		client: defaults.HTTPClient,
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "officeqlctl",
		Short:         "Client for the officeql question-answering API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if r.client == nil {
				r.client = &http.Client{Timeout: r.timeout}
			}
		},
	}

	baseURL := firstNonEmpty(defaults.BaseURL, "http://localhost:5001")
	timeout := defaults.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	root.PersistentFlags().StringVar(&r.baseURL, "base-url", baseURL, "officeql API base URL")
	root.PersistentFlags().StringVar(&r.apiKey, "api-key", defaults.APIKey, "API key for authenticated requests")
	root.PersistentFlags().DurationVar(&r.timeout, "timeout", timeout, "HTTP timeout (e.g. 60s)")

	root.AddCommand(
		&cobra.Command{
			Use:   "ask <question>",
			Short: "Ask a natural language question about the office database",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.ask(cmd.Context(), strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check that the API process is up",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return r.getJSON(cmd.Context(), "/v1/health")
			},
		},
		&cobra.Command{
			Use:   "ready",
			Short: "Check that the API can reach its dependencies",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return r.getJSON(cmd.Context(), "/v1/ready")
			},
		},
	)
	return root
}

func (r *runner) ask(ctx context.Context, question string) error {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint("/ask"), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	r.setCommonHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope nlq.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	r.renderEnvelope(envelope)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return nil
}

func (r *runner) renderEnvelope(envelope nlq.Envelope) {
	if envelope.ErrorMessage != nil {
		_, _ = color.New(color.FgRed).Fprintln(r.stderr, *envelope.ErrorMessage)
	}
	if envelope.NaturalLanguageAnswer != nil {
		_, _ = color.New(color.FgCyan).Fprintln(r.stdout, *envelope.NaturalLanguageAnswer)
	}

	steps := envelope.IntermediateSteps
	if steps.GeneratedSQLQuery != nil && strings.TrimSpace(*steps.GeneratedSQLQuery) != "" {
		_, _ = color.New(color.FgYellow).Fprintln(r.stdout, "\nGenerated SQL:")
		_, _ = fmt.Fprintln(r.stdout, *steps.GeneratedSQLQuery)
	}
	if steps.ExecutionMessage != "" {
		_, _ = fmt.Fprintln(r.stdout, steps.ExecutionMessage)
	}
	if len(steps.ResultRows) == 0 {
		return
	}

	columns := steps.ResultRows[0].Columns()
	table := tablewriter.NewWriter(r.stdout)
	table.SetHeader(columns)
	for _, row := range steps.ResultRows {
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, fmt.Sprintf("%v", row.Value(column)))
		}
		table.Append(cells)
	}
	table.Render()
}

func (r *runner) getJSON(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	r.setCommonHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		_, _ = fmt.Fprintln(r.stderr, strings.TrimSpace(string(body)))
		return fmt.Errorf("http %d", resp.StatusCode)
	}

	if pretty, ok := prettyJSON(body); ok {
		_, _ = fmt.Fprintln(r.stdout, pretty)
	} else if len(body) > 0 {
		_, _ = fmt.Fprintln(r.stdout, string(body))
	}
	return nil
}

func (r *runner) endpoint(path string) string {
	return strings.TrimRight(r.baseURL, "/") + path
}

func (r *runner) setCommonHeaders(req *http.Request) {
	if strings.TrimSpace(r.apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(r.apiKey))
	}
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}
