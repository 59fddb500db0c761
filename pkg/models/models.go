package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents an operator account in the dashboard.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	AvatarURL string    `json:"avatar_url,omitempty" db:"avatar_url"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HostClaim is a single-use, time-bounded code that authorizes binding
// a remote host agent to the issuing operator's account.
type HostClaim struct {
	ID         string     `json:"id" db:"id"`
	Code       string     `json:"code" db:"code"`
	CreatedBy  string     `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty" db:"redeemed_at"`
	HostID     *string    `json:"host_id,omitempty" db:"host_id"`
}

// Claim display states derived from the stored record.
const (
	ClaimStatePending  = "pending"
	ClaimStateExpired  = "expired"
	ClaimStateRedeemed = "redeemed"
)

// State returns the claim's lifecycle state as of now. Redemption is a
// stored transition; expiry is always computed live from expires_at.
func (c *HostClaim) State(now time.Time) string {
	if c.RedeemedAt != nil {
		return ClaimStateRedeemed
	}
	if !now.Before(c.ExpiresAt) {
		return ClaimStateExpired
	}
	return ClaimStatePending
}

// Host represents a registered host agent owned by an operator.
type Host struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description,omitempty" db:"description"`
	DomainCert    string     `json:"domain_cert,omitempty" db:"domain_cert"`
	AgentKey      string     `json:"agent_key,omitempty" db:"agent_key"`
	Verified      bool       `json:"verified" db:"verified"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty" db:"last_heartbeat"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Online reports whether the host has heartbeated within the window.
func (h *Host) Online(now time.Time, window time.Duration) bool {
	return h.LastHeartbeat != nil && now.Sub(*h.LastHeartbeat) <= window
}

// HostDescriptor is the registration payload a host agent supplies
// when redeeming a claim code.
type HostDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DomainCert  string `json:"domain_cert,omitempty"`
}

// LogEntry is a dashboard log line attributed to an operator account.
type LogEntry struct {
	ID        string            `json:"id" db:"id"`
	UserID    string            `json:"user_id" db:"user_id"`
	Source    string            `json:"source" db:"source"`
	SourceID  string            `json:"source_id,omitempty" db:"source_id"`
	Level     string            `json:"level" db:"level"`
	Message   string            `json:"message" db:"message"`
	Metadata  map[string]string `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// AdminNote is a per-user note maintained by administrators.
type AdminNote struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type AuthClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	UUID    uuid.UUID
}
