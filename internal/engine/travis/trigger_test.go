package travis

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"travisconnect/internal/engine"
)

func restartHandler(restartStatus int) http.HandlerFunc {
	repos := repoHandler(map[string]string{
		"/repos/org%2Fapp": passedRepo,
		"/repos/org%2Fnew": neverBuilt,
	})
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if r.URL.Path != "/builds/42/restart" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(restartStatus)
			w.Write([]byte(`{"result":true}`))
			return
		}
		repos(w, r)
	}
}

func TestBuildRestartsLastBuild(t *testing.T) {
	plugin, rec, _ := newTravis(t, restartHandler(http.StatusOK))

	if err := plugin.Build(context.Background(), 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := rec.count("POST /builds/42/restart"); n != 1 {
		t.Errorf("Expected exactly one restart, got %d", n)
	}
	if n := rec.count("GET /repos/org%2Fapp"); n != 1 {
		t.Errorf("Expected one job lookup, got %d", n)
	}
}

func TestBuildEachInvocationRestarts(t *testing.T) {
	plugin, rec, _ := newTravis(t, restartHandler(http.StatusOK))

	for i := 0; i < 2; i++ {
		if err := plugin.Build(context.Background(), 1); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if n := rec.count("POST /builds/42/restart"); n != 2 {
		t.Errorf("Expected two restarts, got %d", n)
	}
}

func TestBuildRestartRejected(t *testing.T) {
	for _, code := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		plugin, rec, _ := newTravis(t, restartHandler(code))

		err := plugin.Build(context.Background(), 1)
		var launchErr *engine.BuildLaunchError
		if !errors.As(err, &launchErr) {
			t.Fatalf("Expected build launch error for %d, got %v", code, err)
		}
		if launchErr.Subscription != 1 {
			t.Errorf("Expected subscription 1, got %d", launchErr.Subscription)
		}
		if !strings.Contains(err.Error(), "subscription 1") {
			t.Errorf("Expected message naming the subscription, got %q", err.Error())
		}
		if n := rec.count("POST /builds/42/restart"); n != 1 {
			t.Errorf("Expected a single restart attempt, got %d", n)
		}
	}
}

func TestBuildNeverBuiltJob(t *testing.T) {
	plugin, rec, _ := newTravis(t, restartHandler(http.StatusOK))

	err := plugin.Build(context.Background(), 2)
	var launchErr *engine.BuildLaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("Expected build launch error, got %v", err)
	}
	if !errors.Is(err, errNeverBuilt) {
		t.Errorf("Expected never built cause, got %v", launchErr.Err)
	}
	for _, req := range rec.requests {
		if strings.HasPrefix(req, "POST") {
			t.Errorf("Expected no restart request, got %s", req)
		}
	}
}

func TestBuildUnknownJob(t *testing.T) {
	plugin, rec, _ := newTravis(t, restartHandler(http.StatusOK))

	err := plugin.Build(context.Background(), 3)
	if !engine.IsBuildLaunchError(err) {
		t.Fatalf("Expected build launch error, got %v", err)
	}
	var verr *engine.ValidationError
	if !errors.As(err, &verr) || verr.Value != "org/gone" {
		t.Errorf("Expected the validation cause to be kept, got %v", err)
	}
	if rec.total() != 1 {
		t.Errorf("Expected only the lookup request, got %v", rec.requests)
	}
}

func TestBuildUnknownSubscription(t *testing.T) {
	plugin, rec, _ := newTravis(t, restartHandler(http.StatusOK))

	err := plugin.Build(context.Background(), 99)
	if !engine.IsBuildLaunchError(err) {
		t.Fatalf("Expected build launch error, got %v", err)
	}
	if !errors.Is(err, errUnknown) {
		t.Errorf("Expected source error to be wrapped, got %v", err)
	}
	if rec.total() != 0 {
		t.Errorf("Expected no remote call, got %v", rec.requests)
	}
}

func TestLaunchNumericBuildID(t *testing.T) {
	plugin, rec, node := newTravis(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(`{"repo":{"slug":"org/app","description":"","last_build_state":"failed","last_build_id":4242}}`))
	})

	if err := plugin.Launch(context.Background(), node.With(ParameterJob, "org/app"), 5); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.count("POST /builds/4242/restart") != 1 {
		t.Errorf("Expected restart of build 4242, got %v", rec.requests)
	}
}
