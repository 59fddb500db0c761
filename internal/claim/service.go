package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hostlink/internal/database"
	"hostlink/internal/metrics"
	"hostlink/pkg/models"
)

// Service-level outcomes. Store-level outcomes (NotFound, Expired,
// AlreadyRedeemed, StoreUnavailable) pass through from
// internal/database unchanged.
var (
	ErrUnauthorized      = errors.New("caller is not authenticated")
	ErrTooManyClaims     = errors.New("too many active claims")
	ErrInvalidDescriptor = errors.New("host descriptor is invalid")
)

// maxGenerateAttempts bounds the regeneration loop on code collision.
// With 32^8 codes the loop effectively never repeats.
const maxGenerateAttempts = 5

// Service implements claim issuance and redemption on top of the
// claim store.
type Service struct {
	db        *database.BunDB
	generator *Generator
	ttl       time.Duration
	maxActive int
}

// NewService creates a claim service. ttl is the validity window of
// issued codes; maxActive caps concurrently valid unredeemed claims
// per issuer (zero disables the cap).
func NewService(db *database.BunDB, generator *Generator, ttl time.Duration, maxActive int) *Service {
	if generator == nil {
		generator = NewGenerator()
	}
	return &Service{
		db:        db,
		generator: generator,
		ttl:       ttl,
		maxActive: maxActive,
	}
}

// Issue mints a new claim code owned by userID. The code and its
// expiry are returned verbatim for operator display.
func (s *Service) Issue(ctx context.Context, userID string) (*models.HostClaim, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	if s.maxActive > 0 {
		// Check-then-insert: concurrent Issue calls can briefly
		// overshoot the cap. The cap throttles runaway issuance, it is
		// not a correctness invariant, so no serialization here.
		active, err := s.db.Claims.CountActive(ctx, userID)
		if err != nil {
			return nil, err
		}
		if active >= s.maxActive {
			return nil, ErrTooManyClaims
		}
	}

	now := time.Now().UTC()
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return nil, err
		}

		claim := &models.HostClaim{
			ID:        uuid.New().String(),
			Code:      code,
			CreatedBy: userID,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}

		err = s.db.Claims.Create(ctx, claim)
		if errors.Is(err, database.ErrCodeCollision) {
			metrics.ClaimGenerationRetries.Inc()
			log.Debug().Int("attempt", attempt+1).Msg("Claim code collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Info().
			Str("user_id", userID).
			Time("expires_at", claim.ExpiresAt).
			Msg("Issued host claim")
		return claim, nil
	}

	return nil, fmt.Errorf("failed to generate a unique claim code after %d attempts", maxGenerateAttempts)
}

// Status returns the caller's claim for status display. A claim issued
// by someone else is reported as not found.
func (s *Service) Status(ctx context.Context, code, userID string) (*models.HostClaim, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	claim, err := s.db.Claims.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if claim.CreatedBy != userID {
		return nil, database.ErrClaimNotFound
	}
	return claim, nil
}

// List returns the caller's claims, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*models.HostClaim, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.db.Claims.ListByIssuer(ctx, userID)
}

// Revoke force-expires one of the caller's pending claims.
func (s *Service) Revoke(ctx context.Context, code, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}

	if err := s.db.Claims.Revoke(ctx, code, userID); err != nil {
		return err
	}

	log.Info().Str("user_id", userID).Msg("Revoked host claim")
	return nil
}

// Redeem exchanges a valid claim code for a registered host. The code
// itself is the credential; no session is required. A fresh host
// record owned by the claim's issuer is created, along with the agent
// key the host uses for heartbeats and log ingestion.
func (s *Service) Redeem(ctx context.Context, code string, descriptor models.HostDescriptor) (*models.Host, error) {
	if descriptor.Name == "" {
		return nil, ErrInvalidDescriptor
	}

	agentKey, err := NewAgentKey()
	if err != nil {
		return nil, err
	}

	host := &models.Host{
		ID:          uuid.New().String(),
		Name:        descriptor.Name,
		Description: descriptor.Description,
		DomainCert:  descriptor.DomainCert,
		AgentKey:    agentKey,
		Verified:    true,
	}

	redeemed, err := s.db.Claims.Redeem(ctx, code, host)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host_id", redeemed.ID).
		Str("host_name", redeemed.Name).
		Msg("Redeemed host claim")
	return redeemed, nil
}
