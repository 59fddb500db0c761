package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostlink/pkg/models"
)

const testSecret = "test-secret-key-for-hostlink-units"

func testProfile(isAdmin bool) *models.Profile {
	return &models.Profile{
		ID:      uuid.New().String(),
		Email:   "ops@example.com",
		IsAdmin: isAdmin,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := NewJWTManager(testSecret, time.Hour)
	profile := testProfile(false)

	token, err := mgr.GenerateToken(profile)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.NotEqual(t, uuid.Nil, claims.UUID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewJWTManager(testSecret, time.Hour).GenerateToken(testProfile(false))
	require.NoError(t, err)

	_, err = NewJWTManager("another-secret-key-entirely-here", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	// A negative TTL mints a token whose exp is already in the past;
	// validation must reject it, not fall back to some default
	// lifetime.
	mgr := NewJWTManager(testSecret, -time.Minute)
	token, err := mgr.GenerateToken(testProfile(false))
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestMiddleware(t *testing.T) {
	mgr := NewJWTManager(testSecret, time.Hour)
	profile := testProfile(false)
	token, err := mgr.GenerateToken(profile)
	require.NoError(t, err)

	var seen *models.AuthClaims
	handler := mgr.Middleware(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// Valid bearer token
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, profile.ID, seen.UserID)

	// Missing header
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed header
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Token "+token)
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminMiddleware(t *testing.T) {
	mgr := NewJWTManager(testSecret, time.Hour)

	handler := mgr.AdminMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	adminToken, err := mgr.GenerateToken(testProfile(true))
	require.NoError(t, err)
	userToken, err := mgr.GenerateToken(testProfile(false))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
