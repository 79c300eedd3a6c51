package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/careops/hms-api/internal/config"
	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/pkg/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "unit-test-secret-at-least-32-chars!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "hms-api-test",
	})
	auditSvc := NewAuditService(&fakeAuditRepo{}, testLogger())
	t.Cleanup(auditSvc.Shutdown)
	return NewAuthService(users, jwtManager, auditSvc, testLogger()), users
}

func seedUser(t *testing.T, users *fakeUserRepo, username, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     active,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLoginSuccess(t *testing.T) {
	svc, users := newTestAuthService(t)
	u := seedUser(t, users, "admin", "s3cret-pass", true)

	res, err := svc.Login(context.Background(), "admin", "s3cret-pass", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, u.ID, res.User.ID)

	// Login time is recorded.
	stored, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "admin", "s3cret-pass", true)

	// Unknown user and wrong password return the same sentinel.
	_, err := svc.Login(context.Background(), "ghost", "whatever", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "admin", "wrong-pass", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "former", "s3cret-pass", false)

	_, err := svc.Login(context.Background(), "former", "s3cret-pass", "")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "admin", "s3cret-pass", true)

	res, err := svc.Login(context.Background(), "admin", "s3cret-pass", "")
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(context.Background(), res.Tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenTypeMismatch)
}

func TestRefreshDeactivatedAccount(t *testing.T) {
	svc, users := newTestAuthService(t)
	u := seedUser(t, users, "admin", "s3cret-pass", true)

	res, err := svc.Login(context.Background(), "admin", "s3cret-pass", "")
	require.NoError(t, err)

	// Deactivate after issuance; the refresh must be rejected.
	users.mu.Lock()
	users.items[u.ID].IsActive = false
	users.mu.Unlock()

	_, err = svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestUserServiceCreateLinks(t *testing.T) {
	users := newFakeUserRepo()
	docRepo := newFakeDoctorRepo()
	auditSvc := NewAuditService(&fakeAuditRepo{}, testLogger())
	t.Cleanup(auditSvc.Shutdown)
	svc := NewUserService(users, docRepo, &stubPatientRepo{}, auditSvc, testLogger())

	docID := seedDoctor(t, docRepo, "", "")
	caller := adminCaller()

	u, err := svc.Create(context.Background(), &CreateUserCommand{
		Username: "drshah",
		Password: "long-enough-pass",
		Role:     domain.RoleDoctor,
		DoctorID: &docID,
	}, caller, "")
	require.NoError(t, err)
	require.NotNil(t, u.DoctorID)
	assert.Equal(t, docID, *u.DoctorID)

	// Second account for the same doctor record is rejected.
	_, err = svc.Create(context.Background(), &CreateUserCommand{
		Username: "drshah2",
		Password: "long-enough-pass",
		Role:     domain.RoleDoctor,
		DoctorID: &docID,
	}, caller, "")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	// Unknown doctor record.
	missing := uuid.New()
	_, err = svc.Create(context.Background(), &CreateUserCommand{
		Username: "nobody",
		Password: "long-enough-pass",
		Role:     domain.RoleDoctor,
		DoctorID: &missing,
	}, caller, "")
	assert.Error(t, err)
}

func TestUserServiceValidation(t *testing.T) {
	users := newFakeUserRepo()
	auditSvc := NewAuditService(&fakeAuditRepo{}, testLogger())
	t.Cleanup(auditSvc.Shutdown)
	svc := NewUserService(users, newFakeDoctorRepo(), &stubPatientRepo{}, auditSvc, testLogger())
	caller := adminCaller()

	var vErr *ValidationError

	_, err := svc.Create(context.Background(), &CreateUserCommand{
		Username: "", Password: "long-enough-pass", Role: domain.RoleAdmin,
	}, caller, "")
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(context.Background(), &CreateUserCommand{
		Username: "shorty", Password: "short", Role: domain.RoleAdmin,
	}, caller, "")
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(context.Background(), &CreateUserCommand{
		Username: "drnolink", Password: "long-enough-pass", Role: domain.RoleDoctor,
	}, caller, "")
	assert.ErrorAs(t, err, &vErr)
}

func TestUserServiceSelfDeleteBlocked(t *testing.T) {
	users := newFakeUserRepo()
	auditSvc := NewAuditService(&fakeAuditRepo{}, testLogger())
	t.Cleanup(auditSvc.Shutdown)
	svc := NewUserService(users, newFakeDoctorRepo(), &stubPatientRepo{}, auditSvc, testLogger())

	caller := adminCaller()
	u := &domain.User{ID: caller.UserID, Username: "self", PasswordHash: "x", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), u))

	err := svc.Delete(context.Background(), caller.UserID, caller, "")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
