package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travisconnect/internal/engine"
	"travisconnect/internal/storage"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("node x: %w", storage.ErrNotFound), http.StatusNotFound},
		{"launch wrapping not found", &engine.BuildLaunchError{Subscription: 3, Err: storage.ErrNotFound}, http.StatusNotFound},
		{"launch", &engine.BuildLaunchError{Subscription: 3, Err: errors.New("rejected")}, http.StatusInternalServerError},
		{"launch wrapping validation", &engine.BuildLaunchError{Subscription: 3, Err: &engine.ValidationError{Parameter: "p", Rule: "r"}}, http.StatusInternalServerError},
		{"validation", &engine.ValidationError{Parameter: "p", Rule: "r", Value: "v"}, http.StatusBadRequest},
		{"parse", &engine.ParseError{Field: "repo"}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if rr.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, rr.Code)
			}
		})
	}
}

func TestWriteServiceErrorValidationBody(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, nil, &engine.ValidationError{Parameter: "service:build:travis:job", Rule: "travis-job", Value: "org/gone"})

	var resp ValidationResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	rules := resp.Errors["service:build:travis:job"]
	if len(rules) != 1 || rules[0].Rule != "travis-job" || rules[0].Parameters != "org/gone" {
		t.Errorf("Unexpected body %+v", resp)
	}
}

func TestLaunchMessage(t *testing.T) {
	err := fmt.Errorf("handler: %w", &engine.BuildLaunchError{Subscription: 9, Err: errors.New("x")})
	if msg := launchMessage(err); !strings.Contains(msg, "subscription 9") {
		t.Errorf("Unexpected message %q", msg)
	}
}

func TestCheckKeys(t *testing.T) {
	allowed := []string{"a", "b"}
	if err := checkKeys(map[string]string{"a": "1", "b": "2"}, allowed); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := checkKeys(map[string]string{"c": "1"}, allowed); err == nil {
		t.Error("Expected error for unknown key")
	}
}
