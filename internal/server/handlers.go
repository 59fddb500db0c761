package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"hostlink/internal/claim"
	"hostlink/internal/database"
	"hostlink/internal/metrics"
	"hostlink/pkg/auth"
	"hostlink/pkg/config"
	"hostlink/pkg/models"
)

type Handler struct {
	db         *database.BunDB
	jwtManager *auth.JWTManager
	claims     *claim.Service
	cfg        *config.Config
}

func NewHandler(db *database.BunDB, jwtManager *auth.JWTManager, claims *claim.Service, cfg *config.Config) *Handler {
	return &Handler{
		db:         db,
		jwtManager: jwtManager,
		claims:     claims,
		cfg:        cfg,
	}
}

// Health check endpoint
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   string          `json:"expires_at"`
	Profile     *models.Profile `json:"profile"`
}

// Login verifies operator identity and issues an access token. Email
// is the stable identifier; identity verification itself lives with
// the upstream session provider, so the first login creates the
// profile row.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	profile, err := h.db.Profiles.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, database.ErrProfileNotFound) {
		profile = &models.Profile{
			ID:        uuid.New().String(),
			Username:  strings.SplitN(req.Email, "@", 2)[0],
			Email:     req.Email,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := h.db.Profiles.Create(r.Context(), profile); err != nil {
			writeClaimError(w, err)
			return
		}
		log.Info().Str("user_id", profile.ID).Msg("Created profile on first login")
	} else if err != nil {
		writeClaimError(w, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(h.cfg.Auth.TokenTTL).Format(time.RFC3339),
		Profile:     profile,
	})
}

type claimResponse struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
	State     string `json:"state"`
}

func claimToResponse(c *models.HostClaim) claimResponse {
	return claimResponse{
		Code:      c.Code,
		ExpiresAt: c.ExpiresAt.UTC().Format(time.RFC3339),
		State:     c.State(time.Now().UTC()),
	}
}

// CreateClaim mints a new claim code for the authenticated operator.
func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	issued, err := h.claims.Issue(r.Context(), claims.UserID)
	if err != nil {
		metrics.ClaimsIssuedTotal.WithLabelValues("error").Inc()
		writeClaimError(w, err)
		return
	}

	metrics.ClaimsIssuedTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusCreated, claimToResponse(issued))
}

// ListClaims returns the authenticated operator's claims.
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	list, err := h.claims.List(r.Context(), claims.UserID)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	result := make([]claimResponse, len(list))
	for i, c := range list {
		result[i] = claimToResponse(c)
	}
	writeJSON(w, http.StatusOK, result)
}

// GetClaim returns a claim's status for "still waiting" / "expired" /
// "linked" display.
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	code := mux.Vars(r)["code"]

	c, err := h.claims.Status(r.Context(), code, claims.UserID)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, claimToResponse(c))
}

// RevokeClaim force-expires one of the operator's pending claims.
func (h *Handler) RevokeClaim(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	code := mux.Vars(r)["code"]

	if err := h.claims.Revoke(r.Context(), code, claims.UserID); err != nil {
		writeClaimError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type redeemRequest struct {
	Code       string                `json:"code"`
	Descriptor models.HostDescriptor `json:"host"`
}

type redeemResponse struct {
	HostID   string `json:"host_id"`
	AgentKey string `json:"agent_key"`
	Name     string `json:"name"`
}

// RedeemClaim is the external-facing redemption endpoint. The claim
// code is the credential; no session is required. Error responses are
// limited to not_found / expired / already_redeemed and never reveal
// anything about the issuer.
func (h *Handler) RedeemClaim(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	host, err := h.claims.Redeem(r.Context(), req.Code, req.Descriptor)
	if err != nil {
		metrics.ClaimRedemptionsTotal.WithLabelValues(redemptionOutcome(err)).Inc()
		writeClaimError(w, err)
		return
	}

	metrics.ClaimRedemptionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.HostsRegisteredTotal.Inc()

	writeJSON(w, http.StatusOK, redeemResponse{
		HostID:   host.ID,
		AgentKey: host.AgentKey,
		Name:     host.Name,
	})
}

func redemptionOutcome(err error) string {
	switch {
	case errors.Is(err, database.ErrClaimNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, database.ErrClaimExpired):
		return metrics.OutcomeExpired
	case errors.Is(err, database.ErrClaimRedeemed):
		return metrics.OutcomeAlreadyRedeemed
	default:
		return metrics.OutcomeError
	}
}
