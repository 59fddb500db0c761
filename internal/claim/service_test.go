package claim

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostlink/internal/database"
	"hostlink/pkg/models"
)

func setupService(t *testing.T, ttl time.Duration, maxActive int) (*Service, *database.BunDB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s", filepath.Join(t.TempDir(), "test.db"))
	db, err := database.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(db, NewGenerator(), ttl, maxActive), db
}

func TestIssue(t *testing.T) {
	svc, _ := setupService(t, 10*time.Minute, 0)

	before := time.Now().UTC()
	claim, err := svc.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Len(t, claim.Code, DefaultCodeLength)
	assert.Equal(t, "user-1", claim.CreatedBy)
	assert.Nil(t, claim.RedeemedAt)

	// Expiry is issuance time plus the configured TTL.
	assert.WithinDuration(t, before.Add(10*time.Minute), claim.ExpiresAt, 5*time.Second)
}

func TestIssue_Unauthorized(t *testing.T) {
	svc, _ := setupService(t, 10*time.Minute, 0)

	_, err := svc.Issue(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssue_ActiveClaimCap(t *testing.T) {
	svc, _ := setupService(t, 10*time.Minute, 2)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Issue(ctx, "user-1")
	assert.ErrorIs(t, err, ErrTooManyClaims)

	// Another user is unaffected by the cap.
	_, err = svc.Issue(ctx, "user-2")
	require.NoError(t, err)

	// Revoking frees a slot.
	require.NoError(t, svc.Revoke(ctx, first.Code, "user-1"))
	_, err = svc.Issue(ctx, "user-1")
	require.NoError(t, err)
}

func TestIssue_CapIgnoresExpiredClaims(t *testing.T) {
	svc, db := setupService(t, 10*time.Minute, 1)
	ctx := context.Background()

	// An already-expired claim does not occupy a slot.
	now := time.Now().UTC()
	expired := &models.HostClaim{
		ID:        uuid.New().String(),
		Code:      "EXPIRED1",
		CreatedBy: "user-1",
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(-50 * time.Minute),
	}
	require.NoError(t, db.Claims.Create(ctx, expired))

	_, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)
}

func TestStatus(t *testing.T) {
	svc, _ := setupService(t, 10*time.Minute, 0)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	got, err := svc.Status(ctx, issued.Code, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatePending, got.State(time.Now().UTC()))

	// Another user's claim reads as not found, never as forbidden.
	_, err = svc.Status(ctx, issued.Code, "user-2")
	assert.ErrorIs(t, err, database.ErrClaimNotFound)
}

func TestRedeem(t *testing.T) {
	svc, db := setupService(t, 10*time.Minute, 0)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	host, err := svc.Redeem(ctx, issued.Code, models.HostDescriptor{
		Name:        "web-01",
		Description: "edge box",
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", host.UserID)
	assert.Equal(t, "web-01", host.Name)
	assert.True(t, host.Verified)
	assert.Len(t, host.AgentKey, 64)

	// The claim is consumed and linked to the new host.
	got, err := svc.Status(ctx, issued.Code, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStateRedeemed, got.State(time.Now().UTC()))
	require.NotNil(t, got.HostID)
	assert.Equal(t, host.ID, *got.HostID)

	// The returned agent key works for heartbeats.
	require.NoError(t, db.Hosts.Heartbeat(ctx, host.ID, host.AgentKey, time.Now().UTC()))
}

func TestRedeem_InvalidDescriptor(t *testing.T) {
	svc, _ := setupService(t, 10*time.Minute, 0)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, issued.Code, models.HostDescriptor{})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	// A rejected descriptor must not consume the claim.
	got, err := svc.Status(ctx, issued.Code, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatePending, got.State(time.Now().UTC()))
}

func TestRedeem_UnknownCode(t *testing.T) {
	svc, _ := setupService(t, 10*time.Minute, 0)

	_, err := svc.Redeem(context.Background(), "NOSUCHCD", models.HostDescriptor{Name: "web-01"})
	assert.ErrorIs(t, err, database.ErrClaimNotFound)
}

func TestRevoke_ThenRedeemFails(t *testing.T) {
	svc, _ := setupService(t, 10*time.Minute, 0)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, issued.Code, "user-1"))

	_, err = svc.Redeem(ctx, issued.Code, models.HostDescriptor{Name: "web-01"})
	assert.ErrorIs(t, err, database.ErrClaimExpired)
}

func TestIssue_RetriesOnCodeCollision(t *testing.T) {
	svc, db := setupService(t, 10*time.Minute, 0)
	ctx := context.Background()

	// Pin the generator to a single character so the second issuance
	// collides and the retry loop has to run out of attempts.
	svc.generator = &Generator{alphabet: "A", length: 8}

	_, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Issue(ctx, "user-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate a unique claim code")

	// Only the first claim exists.
	claims, err := db.Claims.ListByIssuer(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}
