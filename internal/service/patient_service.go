package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/patient"
	"github.com/careops/hms-api/pkg/metrics"
)

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, auditSvc: auditSvc, metrics: m, log: log}
}

func (s *PatientService) Create(ctx context.Context, cmd *patient.CreateCommand, caller *domain.Claims, ip string) (*patient.Patient, error) {
	var problems []string
	if cmd.FirstName == "" {
		problems = append(problems, "first_name is required")
	}
	if cmd.LastName == "" {
		problems = append(problems, "last_name is required")
	}
	if cmd.DateOfBirth.IsZero() {
		problems = append(problems, "date_of_birth is required")
	}
	if cmd.DateOfBirth.After(time.Now()) {
		problems = append(problems, "date_of_birth cannot be in the future")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	number := cmd.PatientNumber
	if number == "" {
		number = newPatientNumber()
	}

	p := &patient.Patient{
		PatientNumber:         number,
		FirstName:             cmd.FirstName,
		LastName:              cmd.LastName,
		DateOfBirth:           cmd.DateOfBirth,
		Gender:                cmd.Gender,
		BloodType:             cmd.BloodType,
		Phone:                 cmd.Phone,
		Email:                 cmd.Email,
		Address:               cmd.Address,
		EmergencyContactName:  cmd.EmergencyContactName,
		EmergencyContactPhone: cmd.EmergencyContactPhone,
		InsuranceProvider:     cmd.InsuranceProvider,
		InsurancePolicyNumber: cmd.InsurancePolicyNumber,
		Allergies:             cmd.Allergies,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.metrics.PatientsCreatedTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "patient",
		ResourceID:   p.ID.String(),
		IPAddress:    ip,
	})
	return p, nil
}

// newPatientNumber builds a human-readable identifier like PAT-20260830-4F2A1C.
func newPatientNumber() string {
	id := uuid.New()
	return fmt.Sprintf("PAT-%s-%X", time.Now().UTC().Format("20060102"), id[:3])
}

func (s *PatientService) Get(ctx context.Context, id uuid.UUID, caller *domain.Claims) (*patient.Patient, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != id {
			return nil, ErrForbidden
		}
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all patients with their latest diagnosis attached. Staff only.
func (s *PatientService) List(ctx context.Context) ([]*patient.WithDiagnosis, error) {
	return s.repo.List(ctx)
}

// ListByDoctor returns the distinct patients a doctor has appointments with.
func (s *PatientService) ListByDoctor(ctx context.Context, doctorID uuid.UUID, caller *domain.Claims) ([]*patient.Patient, error) {
	if caller.Role == domain.RoleDoctor {
		if caller.DoctorID == nil || *caller.DoctorID != doctorID {
			return nil, ErrForbidden
		}
	}
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *PatientService) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdateCommand, caller *domain.Claims, ip string) (*patient.Patient, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != id {
			return nil, ErrForbidden
		}
	}
	p, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "update",
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return p, nil
}

func (s *PatientService) Delete(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}
