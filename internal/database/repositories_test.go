package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostlink/pkg/models"
)

func TestHostRepository_Heartbeat(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := testHost("web-01")
	host.UserID = "user-1"
	require.NoError(t, db.Hosts.Create(ctx, host))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.Hosts.Heartbeat(ctx, host.ID, host.AgentKey, at))

	got, err := db.Hosts.Get(ctx, host.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastHeartbeat)
	assert.WithinDuration(t, at, *got.LastHeartbeat, time.Second)
}

func TestHostRepository_Heartbeat_WrongKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := testHost("web-01")
	host.UserID = "user-1"
	require.NoError(t, db.Hosts.Create(ctx, host))

	// A wrong agent key reads the same as an unknown host.
	err := db.Hosts.Heartbeat(ctx, host.ID, "wrong-key", time.Now().UTC())
	assert.ErrorIs(t, err, ErrHostNotFound)

	err = db.Hosts.Heartbeat(ctx, "no-such-host", host.AgentKey, time.Now().UTC())
	assert.ErrorIs(t, err, ErrHostNotFound)

	got, err := db.Hosts.Get(ctx, host.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastHeartbeat)
}

func TestHostRepository_GetByAgentKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := testHost("web-01")
	host.UserID = "user-1"
	require.NoError(t, db.Hosts.Create(ctx, host))

	got, err := db.Hosts.GetByAgentKey(ctx, host.AgentKey)
	require.NoError(t, err)
	assert.Equal(t, host.ID, got.ID)

	_, err = db.Hosts.GetByAgentKey(ctx, "unknown")
	assert.ErrorIs(t, err, ErrHostNotFound)
}

func TestProfileRepository_CreateAndGetByEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	profile := &models.Profile{
		ID:        uuid.New().String(),
		Username:  "ops",
		Email:     "ops@example.com",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Profiles.Create(ctx, profile))

	got, err := db.Profiles.GetByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
	assert.Equal(t, "ops", got.Username)

	_, err = db.Profiles.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLogRepository_AppendAndList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, source := range []string{"host", "host", "system"} {
		entry := &models.LogEntry{
			ID:        uuid.New().String(),
			UserID:    "user-1",
			Source:    source,
			Level:     "info",
			Message:   "line",
			Metadata:  map[string]string{"seq": string(rune('a' + i))},
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Logs.Append(ctx, entry))
	}

	all, err := db.Logs.ListByUser(ctx, "user-1", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hostOnly, err := db.Logs.ListByUser(ctx, "user-1", "host", 0)
	require.NoError(t, err)
	assert.Len(t, hostOnly, 2)

	limited, err := db.Logs.ListByUser(ctx, "user-1", "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	// Newest first.
	assert.Equal(t, "system", limited[0].Source)
}

func TestAdminNoteRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	note := &models.AdminNote{
		ID:        uuid.New().String(),
		UserID:    "user-1",
		Content:   "first",
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Notes.Upsert(ctx, note))

	// Second upsert for the same user replaces the content.
	note2 := &models.AdminNote{
		ID:        uuid.New().String(),
		UserID:    "user-1",
		Content:   "second",
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Notes.Upsert(ctx, note2))

	got, err := db.Notes.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)

	_, err = db.Notes.Get(ctx, "user-2")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}
