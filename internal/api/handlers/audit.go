package handlers

import (
	"net/http"
	"strconv"

	"travisconnect/internal/storage"
)

// maxAuditPage bounds the number of audit entries returned at once
const maxAuditPage = 1000

// AuditHandler handles audit log-related API requests
type AuditHandler struct {
	store *storage.Store
}

// NewAuditHandler creates a new AuditHandler instance
func NewAuditHandler(store *storage.Store) *AuditHandler {
	return &AuditHandler{store: store}
}

// GetAuditLogs handles the GET /api/v1/audit request
func (h *AuditHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, maxAuditPage)
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	logs, err := h.store.GetAuditLogs(r.Context(), limit, offset)
	if err != nil {
		writeErrorWithRequestID(w, r, http.StatusInternalServerError, "Failed to get audit logs")
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
