package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"hostlink/pkg/models"
)

// ClaimRepository provides database operations for host claims.
//
// The claims table is owned exclusively by this repository; redemption
// and revocation are conditional updates so that concurrent callers
// racing on the same code resolve to exactly one winner.
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.HostClaim) error
	Get(ctx context.Context, code string) (*models.HostClaim, error)
	ListByIssuer(ctx context.Context, userID string) ([]*models.HostClaim, error)
	CountActive(ctx context.Context, userID string) (int, error)

	// Redeem atomically consumes an unredeemed, unexpired claim and
	// registers the host under the claim's issuer. Exactly one
	// concurrent caller wins; losers get ErrClaimRedeemed, and a code
	// past its expiry gets ErrClaimExpired regardless of any cached
	// state. The claim flip and the host insert commit together or
	// not at all.
	Redeem(ctx context.Context, code string, host *models.Host) (*models.Host, error)

	// Revoke force-expires an unredeemed, unexpired claim owned by
	// userID. The row is retained for audit.
	Revoke(ctx context.Context, code, userID string) error
}

type claimRepository struct {
	db *bun.DB
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *bun.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, claim *models.HostClaim) error {
	dbClaim := HostClaimFromModel(claim)
	_, err := r.db.NewInsert().
		Model(dbClaim).
		Exec(ctx)
	if isUniqueViolation(err) {
		return ErrCodeCollision
	}
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *claimRepository) Get(ctx context.Context, code string) (*models.HostClaim, error) {
	claim := new(HostClaim)
	err := r.db.NewSelect().
		Model(claim).
		Where("code = ?", code).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	return claim.ToModel(), nil
}

func (r *claimRepository) ListByIssuer(ctx context.Context, userID string) ([]*models.HostClaim, error) {
	var claims []*HostClaim
	err := r.db.NewSelect().
		Model(&claims).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, storeErr(err)
	}

	result := make([]*models.HostClaim, len(claims))
	for i, c := range claims {
		result[i] = c.ToModel()
	}
	return result, nil
}

func (r *claimRepository) CountActive(ctx context.Context, userID string) (int, error) {
	// Expiry is recomputed against the live clock, never a stored flag.
	count, err := r.db.NewSelect().
		Model((*HostClaim)(nil)).
		Where("created_by = ?", userID).
		Where("redeemed_at IS NULL").
		Where("expires_at > ?", time.Now().UTC()).
		Count(ctx)
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

func (r *claimRepository) Redeem(ctx context.Context, code string, host *models.Host) (*models.Host, error) {
	now := time.Now().UTC()
	var redeemed *models.Host

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Compare-and-set: the guard re-checks redemption state and
		// expiry in the same statement that flips redeemed_at.
		res, err := tx.NewUpdate().
			Model((*HostClaim)(nil)).
			Set("redeemed_at = ?", now).
			Set("host_id = ?", host.ID).
			Where("code = ?", code).
			Where("redeemed_at IS NULL").
			Where("expires_at > ?", now).
			Exec(ctx)
		if err != nil {
			return storeErr(err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return storeErr(err)
		}

		if affected == 0 {
			return r.classifyFailure(ctx, tx, code)
		}

		claim := new(HostClaim)
		if err := tx.NewSelect().Model(claim).Where("code = ?", code).Scan(ctx); err != nil {
			return storeErr(err)
		}

		dbHost := HostFromModel(host)
		dbHost.UserID = claim.CreatedBy
		dbHost.CreatedAt = now
		if _, err := tx.NewInsert().Model(dbHost).Exec(ctx); err != nil {
			return storeErr(err)
		}

		redeemed = dbHost.ToModel()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return redeemed, nil
}

func (r *claimRepository) Revoke(ctx context.Context, code, userID string) error {
	now := time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model((*HostClaim)(nil)).
		Set("expires_at = ?", now).
		Where("code = ?", code).
		Where("created_by = ?", userID).
		Where("redeemed_at IS NULL").
		Where("expires_at > ?", now).
		Exec(ctx)
	if err != nil {
		return storeErr(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if affected == 0 {
		// A claim issued by someone else is indistinguishable from a
		// missing one; the caller learns nothing about other issuers.
		claim := new(HostClaim)
		err := r.db.NewSelect().
			Model(claim).
			Where("code = ?", code).
			Where("created_by = ?", userID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClaimNotFound
		}
		if err != nil {
			return storeErr(err)
		}
		if claim.RedeemedAt != nil {
			return ErrClaimRedeemed
		}
		return ErrClaimExpired
	}

	return nil
}

// classifyFailure decides why the redemption guard matched no row.
func (r *claimRepository) classifyFailure(ctx context.Context, tx bun.Tx, code string) error {
	claim := new(HostClaim)
	err := tx.NewSelect().Model(claim).Where("code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrClaimNotFound
	}
	if err != nil {
		return storeErr(err)
	}
	if claim.RedeemedAt != nil {
		return ErrClaimRedeemed
	}
	return ErrClaimExpired
}
