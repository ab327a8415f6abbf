package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"travisconnect/internal/api/handlers"
	"travisconnect/internal/api/middleware"
	"travisconnect/internal/config"
	"travisconnect/internal/logger"
	"travisconnect/internal/storage"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Router represents the API router
type Router struct {
	mux            *chi.Mux
	allowedOrigins []string
}

// NewRouter creates a new Router instance
func NewRouter(
	cfg config.Config,
	service handlers.TravisService,
	store *storage.Store,
) *Router {
	r := &Router{
		mux:            chi.NewRouter(),
		allowedOrigins: cfg.Server.AllowedOrigins,
	}

	travisHandler := handlers.NewTravisHandler(service, store)
	nodeHandler := handlers.NewNodeHandler(service, store)
	auditHandler := handlers.NewAuditHandler(store)
	authMiddleware := middleware.NewAuthMiddleware(cfg.API)

	// RequestID -> BodySizeLimit -> CORS -> routes
	r.mux.Use(
		middleware.RequestIDMiddleware,
		middleware.LimitBodySize(cfg.Server.MaxBodySize),
		r.corsMiddleware,
	)

	r.mux.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "travisconnect API",
			"version": Version,
			"endpoints": []string{
				"/health - Health check",
				"/api/v1/service/build/travis/{node}/{criteria} - Search jobs",
				"/api/v1/service/build/travis/{node}/job/{id} - Get a job",
				"/api/v1/service/build/travis/build/{subscription} - Restart the last build",
				"/api/v1/audit - Get audit logs",
			},
		})
	})

	r.mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := store.Ping(req.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
	})

	r.mux.Route("/api/v1", func(api chi.Router) {
		api.Use(authMiddleware.Middleware)

		api.Route("/service/build/travis", func(t chi.Router) {
			t.Post("/build/{subscription}", travisHandler.Build)
			t.Get("/subscription/{subscription}/status", travisHandler.SubscriptionStatus)
			t.Get("/node/{node}/status", travisHandler.NodeStatus)
			t.Get("/{node}/job/{id}", travisHandler.FindByID)
			t.Get("/{node}/{criteria}", travisHandler.FindAllByName)
		})

		api.Put("/node/{node}", nodeHandler.SaveNode)
		api.Post("/subscription", nodeHandler.CreateSubscription)
		api.Get("/audit", auditHandler.GetAuditLogs)
	})

	return r
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err, "status", status)
	}
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// corsMiddleware handles CORS headers and preflight requests
func (r *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")

		if len(r.allowedOrigins) == 0 {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			switch {
			case !r.isValidOrigin(origin):
				logger.Warn("Invalid origin format", "origin", origin, "request_id", middleware.GetRequestID(req))
			case r.isOriginAllowed(origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			default:
				logger.Warn("Origin not allowed", "origin", origin, "request_id", middleware.GetRequestID(req))
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// isValidOrigin validates the origin format (must be http:// or https://)
func (r *Router) isValidOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")
}

// isOriginAllowed checks if the given origin is in the allowed list
func (r *Router) isOriginAllowed(origin string) bool {
	for _, allowed := range r.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
