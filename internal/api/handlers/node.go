package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"travisconnect/internal/engine/travis"
	"travisconnect/internal/logger"
	"travisconnect/internal/params"
	"travisconnect/internal/storage"
	"travisconnect/internal/storage/models"
)

// SaveNodeRequest represents the request body for registering a node
type SaveNodeRequest struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters"`
}

// CreateSubscriptionRequest represents the request body for subscribing a project to a job
type CreateSubscriptionRequest struct {
	Node       string            `json:"node"`
	Project    string            `json:"project"`
	Parameters map[string]string `json:"parameters"`
}

// NodeHandler handles node and subscription registration
type NodeHandler struct {
	service TravisService
	store   *storage.Store
}

// NewNodeHandler creates a new NodeHandler instance
func NewNodeHandler(service TravisService, store *storage.Store) *NodeHandler {
	return &NodeHandler{
		service: service,
		store:   store,
	}
}

// SaveNode handles PUT /api/v1/node/{node}
func (h *NodeHandler) SaveNode(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "node")
	if err != nil || strings.TrimSpace(id) == "" {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, "invalid node")
		return
	}

	var req SaveNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := checkKeys(req.Parameters, travis.NodeParameters); err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		req.Name = id
	}

	node := models.Node{ID: id, Name: req.Name}
	if err := h.store.SaveNode(r.Context(), node, params.New(req.Parameters)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	saved, err := h.store.GetNode(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	logger.Info("Node saved", "node", id)
	writeJSON(w, http.StatusOK, saved)
}

// CreateSubscription handles POST /api/v1/subscription. The subscription is
// kept only when its job resolves on the node.
func (h *NodeHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Node == "" || req.Project == "" {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, "node and project are required")
		return
	}
	if err := checkKeys(req.Parameters, []string{travis.ParameterJob}); err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.store.CreateSubscription(r.Context(), req.Node, req.Project, params.New(req.Parameters))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.service.Link(r.Context(), id); err != nil {
		if delErr := h.store.DeleteSubscription(r.Context(), id); delErr != nil {
			logger.Error("Failed to roll back subscription", "subscription", id, "error", delErr)
		}
		writeServiceError(w, r, err)
		return
	}

	sub, err := h.store.GetSubscription(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	logger.Info("Subscription linked", "subscription", id, "node", req.Node)
	writeJSON(w, http.StatusCreated, sub)
}

// checkKeys rejects parameters outside the allowed set
func checkKeys(values map[string]string, allowed []string) error {
	for key := range values {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown parameter %q", key)
		}
	}
	return nil
}
