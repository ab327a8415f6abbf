package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBuildLaunchErrorWrapsCause(t *testing.T) {
	cause := &ValidationError{Parameter: "service:build:travis:job", Rule: "travis-job", Value: "org/app"}
	err := fmt.Errorf("build: %w", &BuildLaunchError{Subscription: 7, Err: cause})

	if !IsBuildLaunchError(err) {
		t.Fatal("Expected build launch error")
	}
	if !IsValidationError(err) {
		t.Error("Expected the validation cause to stay reachable")
	}
	if !strings.Contains(err.Error(), "subscription 7 failed") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestParseErrorMessages(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Field: "slug"}, "missing slug"},
		{&ParseError{Err: errors.New("boom")}, "unexpected payload: boom"},
		{&ParseError{Field: "repos", Err: errors.New("boom")}, "at repos: boom"},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("Expected %q in %q", tt.want, tt.err.Error())
		}
	}
	if IsParseError(errors.New("plain")) {
		t.Error("Plain error must not be a parse error")
	}
}

func TestJobHasBuilt(t *testing.T) {
	id := "42"
	if (Job{}).HasBuilt() {
		t.Error("Job without build id must not have built")
	}
	if !(Job{LastBuildID: &id}).HasBuilt() {
		t.Error("Job with build id must have built")
	}
}

func TestSubscriptionStatusPut(t *testing.T) {
	var s SubscriptionStatus
	s.Put("job", Job{ID: "org/app"})
	if _, ok := s.Data["job"].(Job); !ok {
		t.Errorf("Expected job in status data, got %v", s.Data)
	}
}
