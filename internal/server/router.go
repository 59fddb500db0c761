package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hostlink/internal/metrics"
)

// Router wires the HTTP API. Authenticated operator routes carry the
// JWT middleware, agent routes authenticate with the agent key inside
// the handler, and redemption is deliberately unauthenticated (the
// claim code is the credential).
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(metrics.HTTPMiddleware)

	// Session
	api.HandleFunc("/auth/login", h.Login).Methods("POST")

	// Claims (operator)
	api.HandleFunc("/claims", h.jwtManager.Middleware(h.CreateClaim)).Methods("POST")
	api.HandleFunc("/claims", h.jwtManager.Middleware(h.ListClaims)).Methods("GET")
	api.HandleFunc("/claims/{code}", h.jwtManager.Middleware(h.GetClaim)).Methods("GET")
	api.HandleFunc("/claims/{code}", h.jwtManager.Middleware(h.RevokeClaim)).Methods("DELETE")

	// Redemption (host agent, pre-registration)
	api.HandleFunc("/hosts/redeem", h.RedeemClaim).Methods("POST")

	// Hosts (operator)
	api.HandleFunc("/hosts", h.jwtManager.Middleware(h.ListHosts)).Methods("GET")
	api.HandleFunc("/hosts/{id}", h.jwtManager.Middleware(h.UpdateHost)).Methods("PUT")

	// Host agent (agent-key authenticated)
	api.HandleFunc("/hosts/{id}/heartbeat", h.Heartbeat).Methods("POST")
	api.HandleFunc("/hosts/{id}/logs", h.IngestLogs).Methods("POST")

	// Logs (operator)
	api.HandleFunc("/logs", h.jwtManager.Middleware(h.ListLogs)).Methods("GET")

	// Admin
	api.HandleFunc("/admin/profiles", h.jwtManager.AdminMiddleware(h.ListProfiles)).Methods("GET")
	api.HandleFunc("/admin/hosts", h.jwtManager.AdminMiddleware(h.ListAllHosts)).Methods("GET")
	api.HandleFunc("/admin/notes/{userId}", h.jwtManager.AdminMiddleware(h.GetAdminNote)).Methods("GET")
	api.HandleFunc("/admin/notes/{userId}", h.jwtManager.AdminMiddleware(h.PutAdminNote)).Methods("PUT")

	return addCORS(r)
}

// CORS middleware for the web dashboard
func addCORS(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Agent-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
