package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"hostlink/internal/database"
	"hostlink/internal/metrics"
	"hostlink/pkg/auth"
	"hostlink/pkg/models"
)

// hostInfo is the operator-facing host view. The agent key is a
// credential and is only ever returned once, at redemption.
type hostInfo struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	DomainCert    string     `json:"domain_cert,omitempty"`
	Verified      bool       `json:"verified"`
	Online        bool       `json:"online"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (h *Handler) hostToInfo(host *models.Host, now time.Time) hostInfo {
	return hostInfo{
		ID:            host.ID,
		Name:          host.Name,
		Description:   host.Description,
		DomainCert:    host.DomainCert,
		Verified:      host.Verified,
		Online:        host.Online(now, h.cfg.Heartbeat.OnlineWindow),
		LastHeartbeat: host.LastHeartbeat,
		CreatedAt:     host.CreatedAt,
	}
}

// ListHosts lists the authenticated operator's hosts with derived
// online/offline state.
func (h *Handler) ListHosts(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	hosts, err := h.db.Hosts.List(r.Context(), claims.UserID)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	now := time.Now().UTC()
	result := make([]hostInfo, len(hosts))
	for i, host := range hosts {
		result[i] = h.hostToInfo(host, now)
	}

	writeJSON(w, http.StatusOK, result)
}

type updateHostRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DomainCert  string `json:"domain_cert"`
}

// UpdateHost replaces a host's descriptor fields. A host owned by
// someone else reads as not found.
func (h *Handler) UpdateHost(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	hostID := mux.Vars(r)["id"]

	host, err := h.db.Hosts.Get(r.Context(), hostID)
	if errors.Is(err, database.ErrHostNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "host not found")
		return
	}
	if err != nil {
		writeClaimError(w, err)
		return
	}
	if host.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not_found", "host not found")
		return
	}

	var req updateHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	host.Name = req.Name
	host.Description = req.Description
	host.DomainCert = req.DomainCert
	if err := h.db.Hosts.Update(r.Context(), host); err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.hostToInfo(host, time.Now().UTC()))
}

// Heartbeat records liveness for a host agent. The agent key issued at
// redemption is the credential; a wrong key is indistinguishable from
// an unknown host.
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	hostID := mux.Vars(r)["id"]
	agentKey := r.Header.Get("X-Agent-Key")
	if agentKey == "" {
		metrics.HeartbeatsTotal.WithLabelValues("unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "unauthorized", "agent key required")
		return
	}

	if err := h.db.Hosts.Heartbeat(r.Context(), hostID, agentKey, time.Now().UTC()); err != nil {
		metrics.HeartbeatsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusNotFound, "not_found", "host not recognized")
		return
	}

	metrics.HeartbeatsTotal.WithLabelValues("ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

type ingestLogRequest struct {
	Level    string            `json:"level"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestLogs appends log lines reported by a host agent, attributed to
// the host's owner.
func (h *Handler) IngestLogs(w http.ResponseWriter, r *http.Request) {
	hostID := mux.Vars(r)["id"]
	agentKey := r.Header.Get("X-Agent-Key")
	if agentKey == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "agent key required")
		return
	}

	host, err := h.db.Hosts.GetByAgentKey(r.Context(), agentKey)
	if err != nil || host.ID != hostID {
		writeError(w, http.StatusNotFound, "not_found", "host not recognized")
		return
	}

	var entries []ingestLogRequest
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid log payload")
		return
	}

	now := time.Now().UTC()
	for _, e := range entries {
		if e.Message == "" {
			continue
		}
		level := e.Level
		if level == "" {
			level = "info"
		}
		entry := &models.LogEntry{
			ID:        uuid.New().String(),
			UserID:    host.UserID,
			Source:    "host",
			SourceID:  host.ID,
			Level:     level,
			Message:   e.Message,
			Metadata:  e.Metadata,
			CreatedAt: now,
		}
		if err := h.db.Logs.Append(r.Context(), entry); err != nil {
			writeClaimError(w, err)
			return
		}
	}

	log.Debug().Str("host_id", host.ID).Int("entries", len(entries)).Msg("Ingested host logs")
	w.WriteHeader(http.StatusNoContent)
}

// ListLogs returns the authenticated operator's logs, optionally
// filtered by source.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	source := r.URL.Query().Get("source")

	entries, err := h.db.Logs.ListByUser(r.Context(), claims.UserID, source, 200)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
