package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	msgInternal         = "Something went wrong. Please try again shortly."
	msgNotFound         = "Not found."
	msgMethodNotAllowed = "Method not allowed."
)

type ResponseMessage struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func SendErr(ctx context.Context, w http.ResponseWriter, code int, err error, msg string) {
	if err != nil {
		slog.ErrorContext(ctx, "api error", "error", err, "code", code)
	}

	SendJSON(ctx, w, code, ResponseMessage{Message: msg})
}

func SendJSON(ctx context.Context, w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.ErrorContext(ctx, "write response", "error", err)
	}
}
