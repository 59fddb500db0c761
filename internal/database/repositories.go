package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"hostlink/pkg/models"
)

// HostRepository provides database operations for hosts
type HostRepository interface {
	Get(ctx context.Context, id string) (*models.Host, error)
	GetByAgentKey(ctx context.Context, agentKey string) (*models.Host, error)
	List(ctx context.Context, userID string) ([]*models.Host, error)
	ListAll(ctx context.Context) ([]*models.Host, error)
	Create(ctx context.Context, host *models.Host) error
	Update(ctx context.Context, host *models.Host) error

	// Heartbeat updates last_heartbeat for the host identified by id,
	// but only when agentKey matches; a wrong key is indistinguishable
	// from an unknown host.
	Heartbeat(ctx context.Context, id, agentKey string, at time.Time) error
}

type hostRepository struct {
	db *bun.DB
}

// NewHostRepository creates a new host repository
func NewHostRepository(db *bun.DB) HostRepository {
	return &hostRepository{db: db}
}

func (r *hostRepository) Get(ctx context.Context, id string) (*models.Host, error) {
	host := new(Host)
	err := r.db.NewSelect().
		Model(host).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHostNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	return host.ToModel(), nil
}

func (r *hostRepository) GetByAgentKey(ctx context.Context, agentKey string) (*models.Host, error) {
	host := new(Host)
	err := r.db.NewSelect().
		Model(host).
		Where("agent_key = ?", agentKey).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHostNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	return host.ToModel(), nil
}

func (r *hostRepository) List(ctx context.Context, userID string) ([]*models.Host, error) {
	var hosts []*Host
	err := r.db.NewSelect().
		Model(&hosts).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, storeErr(err)
	}

	result := make([]*models.Host, len(hosts))
	for i, h := range hosts {
		result[i] = h.ToModel()
	}
	return result, nil
}

func (r *hostRepository) ListAll(ctx context.Context) ([]*models.Host, error) {
	var hosts []*Host
	err := r.db.NewSelect().
		Model(&hosts).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, storeErr(err)
	}

	result := make([]*models.Host, len(hosts))
	for i, h := range hosts {
		result[i] = h.ToModel()
	}
	return result, nil
}

func (r *hostRepository) Create(ctx context.Context, host *models.Host) error {
	dbHost := HostFromModel(host)
	_, err := r.db.NewInsert().
		Model(dbHost).
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *hostRepository) Update(ctx context.Context, host *models.Host) error {
	dbHost := HostFromModel(host)
	_, err := r.db.NewUpdate().
		Model(dbHost).
		WherePK().
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *hostRepository) Heartbeat(ctx context.Context, id, agentKey string, at time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*Host)(nil)).
		Set("last_heartbeat = ?", at).
		Where("id = ?", id).
		Where("agent_key = ?", agentKey).
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if affected == 0 {
		return ErrHostNotFound
	}
	return nil
}

// ProfileRepository provides database operations for operator profiles
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *bun.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *bun.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	profile := new(Profile)
	err := r.db.NewSelect().
		Model(profile).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	return profile.ToModel(), nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := new(Profile)
	err := r.db.NewSelect().
		Model(profile).
		Where("email = ?", email).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	return profile.ToModel(), nil
}

func (r *profileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*Profile
	err := r.db.NewSelect().
		Model(&profiles).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, storeErr(err)
	}

	result := make([]*models.Profile, len(profiles))
	for i, p := range profiles {
		result[i] = p.ToModel()
	}
	return result, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	dbProfile := ProfileFromModel(profile)
	_, err := r.db.NewInsert().
		Model(dbProfile).
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	dbProfile := ProfileFromModel(profile)
	_, err := r.db.NewUpdate().
		Model(dbProfile).
		WherePK().
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// LogRepository provides database operations for dashboard logs
type LogRepository interface {
	Append(ctx context.Context, entry *models.LogEntry) error
	ListByUser(ctx context.Context, userID, source string, limit int) ([]*models.LogEntry, error)
}

type logRepository struct {
	db *bun.DB
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *bun.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	dbEntry := LogEntryFromModel(entry)
	_, err := r.db.NewInsert().
		Model(dbEntry).
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *logRepository) ListByUser(ctx context.Context, userID, source string, limit int) ([]*models.LogEntry, error) {
	var entries []*LogEntry
	query := r.db.NewSelect().
		Model(&entries).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if source != "" {
		query = query.Where("source = ?", source)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, storeErr(err)
	}

	result := make([]*models.LogEntry, len(entries))
	for i, e := range entries {
		result[i] = e.ToModel()
	}
	return result, nil
}

// AdminNoteRepository provides database operations for admin notes
type AdminNoteRepository interface {
	Get(ctx context.Context, userID string) (*models.AdminNote, error)
	Upsert(ctx context.Context, note *models.AdminNote) error
}

type adminNoteRepository struct {
	db *bun.DB
}

// NewAdminNoteRepository creates a new admin note repository
func NewAdminNoteRepository(db *bun.DB) AdminNoteRepository {
	return &adminNoteRepository{db: db}
}

func (r *adminNoteRepository) Get(ctx context.Context, userID string) (*models.AdminNote, error) {
	note := new(AdminNote)
	err := r.db.NewSelect().
		Model(note).
		Where("user_id = ?", userID).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	return note.ToModel(), nil
}

func (r *adminNoteRepository) Upsert(ctx context.Context, note *models.AdminNote) error {
	dbNote := AdminNoteFromModel(note)
	_, err := r.db.NewInsert().
		Model(dbNote).
		On("CONFLICT (user_id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}
	return nil
}
