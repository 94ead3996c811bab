package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/officeql/officeql/internal/observability"
)

type askRequest struct {
	Question string `json:"question"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "PIPELINE_UNAVAILABLE", "question pipeline is not configured", true, nil)
		return
	}

	var req askRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be a JSON object with a question field", false, nil)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "MISSING_QUESTION", "No question provided", false, nil)
		return
	}

	envelope, err := deps.Pipeline.Ask(r.Context(), req.Question)
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "question pipeline failed",
				slog.String("error", err.Error()),
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
			)
		}
	}
	writeJSON(w, status, envelope)
}
