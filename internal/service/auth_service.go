package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/pkg/auth"
)

// UserRepository is the account store the auth and user services depend on.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByDoctorID(ctx context.Context, doctorID uuid.UUID) (*domain.User, error)
	GetByPatientID(ctx context.Context, patientID uuid.UUID) (*domain.User, error)
	GetAdmin(ctx context.Context) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordLogin(ctx context.Context, id uuid.UUID) error
}

type AuthService struct {
	users    UserRepository
	jwt      *auth.JWTManager
	auditSvc *AuditService
	log      *zap.Logger
}

func NewAuthService(users UserRepository, jwt *auth.JWTManager, auditSvc *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, auditSvc: auditSvc, log: log}
}

type LoginResult struct {
	Tokens domain.TokenPair
	User   *domain.User
}

// Login verifies the username and password and issues a token pair. Invalid
// username and invalid password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &ValidationError{Fields: []string{"username and password are required"}}
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt",
			zap.String("username", username),
			zap.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	tokens, err := s.jwt.GenerateTokenPair(claimsFor(u))
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}

	if err := s.users.RecordLogin(ctx, u.ID); err != nil {
		s.log.Warn("failed to record login time", zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       u.ID,
		UserRole:     string(u.Role),
		Action:       "login",
		ResourceType: "session",
		IPAddress:    ip,
	})

	return &LoginResult{Tokens: *tokens, User: u}, nil
}

// Refresh trades a valid refresh token for a fresh pair. The account is
// re-read so a deactivation since issuance takes effect immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	return s.jwt.GenerateTokenPair(claimsFor(u))
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		DoctorID:  u.DoctorID,
		PatientID: u.PatientID,
	}
}
