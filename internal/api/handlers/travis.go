package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"travisconnect/internal/api/middleware"
	"travisconnect/internal/engine"
	"travisconnect/internal/engine/travis"
	"travisconnect/internal/logger"
	"travisconnect/internal/params"
	"travisconnect/internal/storage"
	"travisconnect/internal/storage/models"
)

// TravisService is the part of the Travis plugin exposed over HTTP
type TravisService interface {
	CheckStatus(ctx context.Context, p params.Parameters) (bool, error)
	CheckSubscriptionStatus(ctx context.Context, p params.Parameters) (*engine.SubscriptionStatus, error)
	FindByID(ctx context.Context, node, id string) (engine.Job, error)
	FindAllByName(ctx context.Context, node, criteria string) ([]engine.Job, error)
	Build(ctx context.Context, subscription int) error
	Link(ctx context.Context, subscription int) error
}

// BuildResult is returned once a build has been launched
type BuildResult struct {
	Subscription int    `json:"subscription"`
	Job          string `json:"job,omitempty"`
	Message      string `json:"message"`
}

// NodeStatus is returned by the node status check
type NodeStatus struct {
	Node      string `json:"node"`
	Available bool   `json:"available"`
}

// TravisHandler handles Travis-related API requests
type TravisHandler struct {
	service TravisService
	store   *storage.Store
}

// NewTravisHandler creates a new TravisHandler instance
func NewTravisHandler(service TravisService, store *storage.Store) *TravisHandler {
	return &TravisHandler{
		service: service,
		store:   store,
	}
}

// FindAllByName handles GET /api/v1/service/build/travis/{node}/{criteria}
func (h *TravisHandler) FindAllByName(w http.ResponseWriter, r *http.Request) {
	node, criteria, err := pathParams(r, "node", "criteria")
	if err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := h.service.FindAllByName(r.Context(), node, criteria)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// FindByID handles GET /api/v1/service/build/travis/{node}/job/{id}
func (h *TravisHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	node, id, err := pathParams(r, "node", "id")
	if err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.service.FindByID(r.Context(), node, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Build handles POST /api/v1/service/build/travis/build/{subscription}
func (h *TravisHandler) Build(w http.ResponseWriter, r *http.Request) {
	subscription, err := subscriptionParam(r)
	if err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}

	jobName := h.subscribedJob(r.Context(), subscription)
	entry := models.AuditLog{
		Caller:       middleware.CallerFromContext(r.Context()),
		Method:       r.Method,
		Path:         r.URL.Path,
		Subscription: subscription,
		JobName:      jobName,
	}

	if err := h.service.Build(r.Context(), subscription); err != nil {
		logger.Error("Failed to launch Travis build", "error", err, "subscription", subscription,
			"request_id", middleware.GetRequestID(r))

		entry.Status = http.StatusInternalServerError
		entry.Result = "failed"
		entry.Error = err.Error()
		h.audit(r.Context(), entry)

		writeServiceError(w, r, err)
		return
	}

	entry.Status = http.StatusOK
	entry.Result = "success"
	h.audit(r.Context(), entry)

	writeJSON(w, http.StatusOK, BuildResult{
		Subscription: subscription,
		Job:          jobName,
		Message:      fmt.Sprintf("Launching the job for the subscription %d succeeded", subscription),
	})
}

// SubscriptionStatus handles GET /api/v1/service/build/travis/subscription/{subscription}/status
func (h *TravisHandler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	subscription, err := subscriptionParam(r)
	if err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}

	prm, err := h.store.SubscriptionParameters(r.Context(), subscription)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status, err := h.service.CheckSubscriptionStatus(r.Context(), prm)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// NodeStatus handles GET /api/v1/service/build/travis/node/{node}/status
func (h *TravisHandler) NodeStatus(w http.ResponseWriter, r *http.Request) {
	node, err := urlParam(r, "node")
	if err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, "invalid node")
		return
	}

	prm, err := h.store.NodeParameters(r.Context(), node)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	available, err := h.service.CheckStatus(r.Context(), prm)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeStatus{Node: node, Available: available})
}

// subscribedJob returns the job bound to a subscription, empty when it cannot be read
func (h *TravisHandler) subscribedJob(ctx context.Context, subscription int) string {
	prm, err := h.store.SubscriptionParameters(ctx, subscription)
	if err != nil {
		return ""
	}
	job, _ := prm.Get(travis.ParameterJob)
	return job
}

func (h *TravisHandler) audit(ctx context.Context, entry models.AuditLog) {
	if err := h.store.InsertAuditLog(ctx, entry); err != nil {
		logger.Warn("Build attempt not audited", "subscription", entry.Subscription, "error", err)
	}
}

// urlParam returns a decoded URL parameter. The router matches on the raw
// path when one is present, so identifiers may still carry an encoded slash.
func urlParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s", name)
	}
	return decoded, nil
}

func pathParams(r *http.Request, first, second string) (string, string, error) {
	a, err := urlParam(r, first)
	if err != nil {
		return "", "", err
	}
	b, err := urlParam(r, second)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func subscriptionParam(r *http.Request) (int, error) {
	subscription, err := strconv.Atoi(chi.URLParam(r, "subscription"))
	if err != nil || subscription <= 0 {
		return 0, fmt.Errorf("invalid subscription")
	}
	return subscription, nil
}
