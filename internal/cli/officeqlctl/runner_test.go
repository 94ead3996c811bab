package officeqlctl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRunAskCommand(t *testing.T) {
	var gotMethod, gotPath, gotAPIKey string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"natural_language_answer": "There are 3 employees in Sales.",
			"intermediate_steps": {
				"relevant_schema": "CREATE TABLE employees (...)",
				"generated_sql_query": "SELECT COUNT(*) AS total FROM employees;",
				"result_rows": [{"total": 3}]
			},
			"error_message": null
		}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{
		"--base-url", srv.URL,
		"--api-key", "k1",
		"ask", "how", "many", "employees?",
	}, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		Timeout: 2 * time.Second,
	})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr.String())
	}
	if gotMethod != http.MethodPost || gotPath != "/ask" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotAPIKey != "k1" {
		t.Fatalf("api key header = %q", gotAPIKey)
	}
	if gotBody["question"] != "how many employees?" {
		t.Fatalf("question sent = %q", gotBody["question"])
	}

	out := stdout.String()
	if !strings.Contains(out, "There are 3 employees in Sales.") {
		t.Fatalf("missing answer in output: %s", out)
	}
	if !strings.Contains(out, "SELECT COUNT(*) AS total FROM employees;") {
		t.Fatalf("missing SQL in output: %s", out)
	}
	if !strings.Contains(strings.ToUpper(out), "TOTAL") {
		t.Fatalf("missing table header in output: %s", out)
	}
}

func TestRunAskReportsPipelineFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{
			"natural_language_answer": null,
			"intermediate_steps": {"relevant_schema": "", "generated_sql_query": null, "result_rows": []},
			"error_message": "Error: No tables found in the database."
		}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--base-url", srv.URL, "ask", "anything"}, Options{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "No tables found") {
		t.Fatalf("missing error output: %s", stderr.String())
	}
}

func TestRunHealthCommand(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var stdout bytes.Buffer
	code := Run(context.Background(), []string{"--base-url", srv.URL, "health"}, Options{Stdout: &stdout})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if gotPath != "/v1/health" {
		t.Fatalf("path = %s", gotPath)
	}
	if !strings.Contains(stdout.String(), `"status": "ok"`) {
		t.Fatalf("expected pretty JSON, got %s", stdout.String())
	}
}

func TestRunReadyCommandFailsWhenNotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error_code":"NOT_READY"}`))
	}))
	defer srv.Close()

	var stderr bytes.Buffer
	code := Run(context.Background(), []string{"--base-url", srv.URL, "ready"}, Options{Stderr: &stderr})
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if stderr.Len() == 0 {
		t.Fatal("expected error output")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	code := Run(context.Background(), []string{"unknown"}, Options{Stderr: &stderr})
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
}
