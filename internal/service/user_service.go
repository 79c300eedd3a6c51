package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/doctor"
	"github.com/careops/hms-api/internal/domain/patient"
)

type UserService struct {
	users       UserRepository
	doctorRepo  doctor.Repository
	patientRepo patient.Repository
	auditSvc    *AuditService
	log         *zap.Logger
}

func NewUserService(users UserRepository, doctorRepo doctor.Repository, patientRepo patient.Repository, auditSvc *AuditService, log *zap.Logger) *UserService {
	return &UserService{users: users, doctorRepo: doctorRepo, patientRepo: patientRepo, auditSvc: auditSvc, log: log}
}

type CreateUserCommand struct {
	Username  string
	Password  string
	Role      domain.Role
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

// Create provisions a login account. Doctor and patient accounts must link to
// an existing record of the matching kind; each record carries at most one
// account.
func (s *UserService) Create(ctx context.Context, cmd *CreateUserCommand, caller *domain.Claims, ip string) (*domain.User, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)

	var problems []string
	if cmd.Username == "" {
		problems = append(problems, "username is required")
	}
	if len(cmd.Password) < 8 {
		problems = append(problems, "password must be at least 8 characters")
	}
	switch cmd.Role {
	case domain.RoleAdmin, domain.RoleDoctor, domain.RolePatient:
	default:
		problems = append(problems, "role must be one of admin, doctor, patient")
	}
	if cmd.Role == domain.RoleDoctor && cmd.DoctorID == nil {
		problems = append(problems, "doctor_id is required for doctor accounts")
	}
	if cmd.Role == domain.RolePatient && cmd.PatientID == nil {
		problems = append(problems, "patient_id is required for patient accounts")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	switch cmd.Role {
	case domain.RoleDoctor:
		if _, err := s.doctorRepo.GetByID(ctx, *cmd.DoctorID); err != nil {
			return nil, err
		}
		if _, err := s.users.GetByDoctorID(ctx, *cmd.DoctorID); err == nil {
			return nil, &ValidationError{Fields: []string{"doctor already has an account"}}
		} else if err != ErrUserNotFound {
			return nil, fmt.Errorf("checking doctor account: %w", err)
		}
		cmd.PatientID = nil
	case domain.RolePatient:
		if _, err := s.patientRepo.GetByID(ctx, *cmd.PatientID); err != nil {
			return nil, err
		}
		if _, err := s.users.GetByPatientID(ctx, *cmd.PatientID); err == nil {
			return nil, &ValidationError{Fields: []string{"patient already has an account"}}
		} else if err != ErrUserNotFound {
			return nil, fmt.Errorf("checking patient account: %w", err)
		}
		cmd.DoctorID = nil
	default:
		cmd.DoctorID = nil
		cmd.PatientID = nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Username:     cmd.Username,
		PasswordHash: string(hash),
		Role:         cmd.Role,
		DoctorID:     cmd.DoctorID,
		PatientID:    cmd.PatientID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "user",
		ResourceID:   u.ID.String(),
		IPAddress:    ip,
	})

	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	if id == caller.UserID {
		return &ValidationError{Fields: []string{"cannot delete your own account"}}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "user",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}
