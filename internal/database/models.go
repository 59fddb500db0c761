package database

import (
	"time"

	"github.com/uptrace/bun"

	"hostlink/pkg/models"
)

// Profile represents an operator account in the database using Bun ORM
type Profile struct {
	bun.BaseModel `bun:"table:profiles"`

	ID        string    `bun:"id,pk"`
	Username  string    `bun:"username,notnull"`
	Email     string    `bun:"email,unique,notnull"`
	AvatarURL string    `bun:"avatar_url"`
	IsAdmin   bool      `bun:"is_admin,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	// Relations
	Hosts []*Host `bun:"rel:has-many,join:id=user_id"`
}

// ToModel converts database Profile to domain model
func (p *Profile) ToModel() *models.Profile {
	return &models.Profile{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
		IsAdmin:   p.IsAdmin,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProfileFromModel converts domain model to database Profile
func ProfileFromModel(m *models.Profile) *Profile {
	return &Profile{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		AvatarURL: m.AvatarURL,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// HostClaim represents a claim code in the database using Bun ORM.
// Rows are never deleted; expiry is derived from expires_at at read
// time and redemption is the only stored transition.
type HostClaim struct {
	bun.BaseModel `bun:"table:host_claims"`

	ID         string     `bun:"id,pk"`
	Code       string     `bun:"code,unique,notnull"`
	CreatedBy  string     `bun:"created_by,notnull"`
	CreatedAt  time.Time  `bun:"created_at,notnull"`
	ExpiresAt  time.Time  `bun:"expires_at,notnull"`
	RedeemedAt *time.Time `bun:"redeemed_at"`
	HostID     *string    `bun:"host_id"`
}

// ToModel converts database HostClaim to domain model
func (c *HostClaim) ToModel() *models.HostClaim {
	return &models.HostClaim{
		ID:         c.ID,
		Code:       c.Code,
		CreatedBy:  c.CreatedBy,
		CreatedAt:  c.CreatedAt,
		ExpiresAt:  c.ExpiresAt,
		RedeemedAt: c.RedeemedAt,
		HostID:     c.HostID,
	}
}

// HostClaimFromModel converts domain model to database HostClaim
func HostClaimFromModel(m *models.HostClaim) *HostClaim {
	return &HostClaim{
		ID:         m.ID,
		Code:       m.Code,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
		ExpiresAt:  m.ExpiresAt,
		RedeemedAt: m.RedeemedAt,
		HostID:     m.HostID,
	}
}

// Host represents a registered host agent in the database using Bun ORM
type Host struct {
	bun.BaseModel `bun:"table:hosts"`

	ID            string     `bun:"id,pk"`
	UserID        string     `bun:"user_id,notnull"`
	Name          string     `bun:"name,notnull"`
	Description   string     `bun:"description"`
	DomainCert    string     `bun:"domain_cert"`
	AgentKey      string     `bun:"agent_key,unique,notnull"`
	Verified      bool       `bun:"verified,notnull,default:false"`
	LastHeartbeat *time.Time `bun:"last_heartbeat"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	// Relations
	Owner *Profile `bun:"rel:belongs-to,join:user_id=id"`
}

// ToModel converts database Host to domain model
func (h *Host) ToModel() *models.Host {
	return &models.Host{
		ID:            h.ID,
		UserID:        h.UserID,
		Name:          h.Name,
		Description:   h.Description,
		DomainCert:    h.DomainCert,
		AgentKey:      h.AgentKey,
		Verified:      h.Verified,
		LastHeartbeat: h.LastHeartbeat,
		CreatedAt:     h.CreatedAt,
	}
}

// HostFromModel converts domain model to database Host
func HostFromModel(m *models.Host) *Host {
	return &Host{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Description:   m.Description,
		DomainCert:    m.DomainCert,
		AgentKey:      m.AgentKey,
		Verified:      m.Verified,
		LastHeartbeat: m.LastHeartbeat,
		CreatedAt:     m.CreatedAt,
	}
}

// LogEntry represents a dashboard log line in the database using Bun ORM
type LogEntry struct {
	bun.BaseModel `bun:"table:logs"`

	ID        string            `bun:"id,pk"`
	UserID    string            `bun:"user_id,notnull"`
	Source    string            `bun:"source,notnull"`
	SourceID  string            `bun:"source_id"`
	Level     string            `bun:"level,notnull,default:'info'"`
	Message   string            `bun:"message,notnull"`
	Metadata  map[string]string `bun:"metadata,type:json"`
	CreatedAt time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database LogEntry to domain model
func (l *LogEntry) ToModel() *models.LogEntry {
	return &models.LogEntry{
		ID:        l.ID,
		UserID:    l.UserID,
		Source:    l.Source,
		SourceID:  l.SourceID,
		Level:     l.Level,
		Message:   l.Message,
		Metadata:  l.Metadata,
		CreatedAt: l.CreatedAt,
	}
}

// LogEntryFromModel converts domain model to database LogEntry
func LogEntryFromModel(m *models.LogEntry) *LogEntry {
	return &LogEntry{
		ID:        m.ID,
		UserID:    m.UserID,
		Source:    m.Source,
		SourceID:  m.SourceID,
		Level:     m.Level,
		Message:   m.Message,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
}

// AdminNote represents a per-user admin note in the database using Bun ORM
type AdminNote struct {
	bun.BaseModel `bun:"table:admin_notes"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,unique,notnull"`
	Content   string    `bun:"content,notnull,default:''"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database AdminNote to domain model
func (n *AdminNote) ToModel() *models.AdminNote {
	return &models.AdminNote{
		ID:        n.ID,
		UserID:    n.UserID,
		Content:   n.Content,
		UpdatedAt: n.UpdatedAt,
	}
}

// AdminNoteFromModel converts domain model to database AdminNote
func AdminNoteFromModel(m *models.AdminNote) *AdminNote {
	return &AdminNote{
		ID:        m.ID,
		UserID:    m.UserID,
		Content:   m.Content,
		UpdatedAt: m.UpdatedAt,
	}
}
