package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/officeql/officeql/internal/cli/officeqlctl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("OFFICEQL_CLI_TIMEOUT")), 60*time.Second)
	options := officeqlctl.Options{
		BaseURL: envOr("OFFICEQL_API_URL", "http://localhost:5001"),
		APIKey:  strings.TrimSpace(os.Getenv("OFFICEQL_API_KEY")),
		Timeout: timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	code := officeqlctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid OFFICEQL_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
