package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/hms-api/internal/config"
	"github.com/careops/hms-api/internal/domain"
)

func testManager(accessTTL time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "unit-test-secret-at-least-32-chars!",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "hms-api-test",
	})
}

func testClaims() *domain.Claims {
	doctorID := uuid.New()
	return &domain.Claims{
		UserID:   uuid.New(),
		Username: "drshah",
		Role:     domain.RoleDoctor,
		DoctorID: &doctorID,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager(15 * time.Minute)
	in := testClaims()

	pair, err := m.GenerateTokenPair(in)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	out, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Username, out.Username)
	assert.Equal(t, in.Role, out.Role)
	require.NotNil(t, out.DoctorID)
	assert.Equal(t, *in.DoctorID, *out.DoctorID)
	assert.Nil(t, out.PatientID)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := testManager(15 * time.Minute)
	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestExpiredToken(t *testing.T) {
	m := testManager(-time.Minute)
	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecretRejected(t *testing.T) {
	m := testManager(15 * time.Minute)
	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	other := NewJWTManager(config.JWTConfig{
		Secret:          "a-completely-different-signing-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "hms-api-test",
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testManager(15 * time.Minute)
	_, err := m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
