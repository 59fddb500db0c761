package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// BunDB wraps bun.DB and provides repository access
type BunDB struct {
	db *bun.DB

	// Repositories
	Claims   ClaimRepository
	Hosts    HostRepository
	Profiles ProfileRepository
	Logs     LogRepository
	Notes    AdminNoteRepository
}

// Option is a functional option for configuring the database
type Option func(*BunDB)

// WithDebug enables query logging for debugging
func WithDebug(enabled bool) Option {
	return func(db *BunDB) {
		if enabled {
			db.db.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
			))
			log.Info().Msg("Bun query logging enabled")
		}
	}
}

// New creates a new Bun-based database connection
func New(dbPath string, opts ...Option) (*BunDB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	bunDB := &BunDB{
		db: db,
	}

	for _, opt := range opts {
		opt(bunDB)
	}

	bunDB.Claims = NewClaimRepository(db)
	bunDB.Hosts = NewHostRepository(db)
	bunDB.Profiles = NewProfileRepository(db)
	bunDB.Logs = NewLogRepository(db)
	bunDB.Notes = NewAdminNoteRepository(db)

	if err := bunDB.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Bun database initialized successfully")
	return bunDB, nil
}

// Close closes the database connection
func (db *BunDB) Close() error {
	return db.db.Close()
}

// Migrate runs database migrations
func (db *BunDB) Migrate(ctx context.Context) error {
	log.Info().Msg("Running database migrations")

	models := []interface{}{
		(*Profile)(nil),
		(*Host)(nil),
		(*HostClaim)(nil),
		(*LogEntry)(nil),
		(*AdminNote)(nil),
	}

	for _, model := range models {
		if _, err := db.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		// HostClaim indexes; code already carries a unique index
		"CREATE INDEX IF NOT EXISTS idx_host_claims_created_by ON host_claims(created_by)",
		"CREATE INDEX IF NOT EXISTS idx_host_claims_expires_at ON host_claims(expires_at)",

		// Host indexes
		"CREATE INDEX IF NOT EXISTS idx_hosts_user_id ON hosts(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_hosts_last_heartbeat ON hosts(last_heartbeat)",

		// Log indexes
		"CREATE INDEX IF NOT EXISTS idx_logs_user_id ON logs(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_logs_source ON logs(source)",
		"CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)",

		// Profile indexes
		"CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email)",
		"CREATE INDEX IF NOT EXISTS idx_profiles_is_admin ON profiles(is_admin) WHERE is_admin = true",
	}

	for _, idx := range indexes {
		if _, err := db.db.ExecContext(ctx, idx); err != nil {
			log.Warn().Err(err).Str("index", idx).Msg("Failed to create index (may already exist)")
			// Don't fail on index errors - they might already exist
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
