package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"hostlink/internal/database"
	"hostlink/pkg/models"
)

// GetAdminNote returns the admin note for a user; an empty note if
// none has been written yet.
func (h *Handler) GetAdminNote(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	note, err := h.db.Notes.Get(r.Context(), userID)
	if errors.Is(err, database.ErrNoteNotFound) {
		writeJSON(w, http.StatusOK, models.AdminNote{UserID: userID})
		return
	}
	if err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

type updateNoteRequest struct {
	Content string `json:"content"`
}

// PutAdminNote creates or replaces the admin note for a user.
func (h *Handler) PutAdminNote(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid note payload")
		return
	}

	if _, err := h.db.Profiles.Get(r.Context(), userID); err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeClaimError(w, err)
		return
	}

	note := &models.AdminNote{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   req.Content,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.db.Notes.Upsert(r.Context(), note); err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// ListProfiles returns all operator profiles (admin only).
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.db.Profiles.List(r.Context())
	if err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// adminHostInfo is the fleet-wide host view; unlike the operator view
// it names the owning account.
type adminHostInfo struct {
	hostInfo
	UserID string `json:"user_id"`
}

// ListAllHosts returns every registered host across operators (admin
// only). The agent key stays excluded here too.
func (h *Handler) ListAllHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.db.Hosts.ListAll(r.Context())
	if err != nil {
		writeClaimError(w, err)
		return
	}

	now := time.Now().UTC()
	result := make([]adminHostInfo, len(hosts))
	for i, host := range hosts {
		result[i] = adminHostInfo{
			hostInfo: h.hostToInfo(host, now),
			UserID:   host.UserID,
		}
	}

	writeJSON(w, http.StatusOK, result)
}
