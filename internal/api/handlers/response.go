package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"travisconnect/internal/api/middleware"
	"travisconnect/internal/engine"
	"travisconnect/internal/logger"
	"travisconnect/internal/storage"
)

// ValidationRule is one failed rule of a parameter
type ValidationRule struct {
	Rule       string `json:"rule"`
	Parameters string `json:"parameters,omitempty"`
}

// ValidationResponse is the body returned for a validation error, keyed by parameter
type ValidationResponse struct {
	Errors map[string][]ValidationRule `json:"errors"`
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err, "status", status)
	}
}

// writeErrorWithRequestID writes a standardized error response with optional request ID
func writeErrorWithRequestID(w http.ResponseWriter, r *http.Request, status int, message string) {
	response := map[string]interface{}{
		"error":  message,
		"status": http.StatusText(status),
	}

	if r != nil {
		if requestID := middleware.GetRequestID(r); requestID != "" {
			response["request_id"] = requestID
		}
	}

	writeJSON(w, status, response)
}

// writeServiceError maps an error returned by the plugin or the store to a response
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *engine.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeErrorWithRequestID(w, r, http.StatusNotFound, err.Error())
	case engine.IsBuildLaunchError(err):
		writeErrorWithRequestID(w, r, http.StatusInternalServerError, launchMessage(err))
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ValidationResponse{
			Errors: map[string][]ValidationRule{
				verr.Parameter: {{Rule: verr.Rule, Parameters: verr.Value}},
			},
		})
	case engine.IsParseError(err):
		logger.Error("Unexpected Travis payload", "error", err, "request_id", middleware.GetRequestID(r))
		writeErrorWithRequestID(w, r, http.StatusBadGateway, "unexpected response from Travis")
	default:
		logger.Error("Request failed", "error", err, "request_id", middleware.GetRequestID(r))
		writeErrorWithRequestID(w, r, http.StatusInternalServerError, "internal error")
	}
}

// launchMessage returns the message of the outermost BuildLaunchError
func launchMessage(err error) string {
	var launchErr *engine.BuildLaunchError
	if errors.As(err, &launchErr) {
		return launchErr.Error()
	}
	return err.Error()
}
