package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/doctor"
)

type DoctorService struct {
	repo     doctor.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDoctorService(repo doctor.Repository, auditSvc *AuditService, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *DoctorService) Create(ctx context.Context, cmd *doctor.CreateCommand, caller *domain.Claims, ip string) (*doctor.Doctor, error) {
	var problems []string
	if cmd.EmployeeID == "" {
		problems = append(problems, "employee_id is required")
	}
	if cmd.FirstName == "" {
		problems = append(problems, "first_name is required")
	}
	if cmd.LastName == "" {
		problems = append(problems, "last_name is required")
	}
	if (cmd.AvailableFrom == "") != (cmd.AvailableTo == "") {
		problems = append(problems, "available_from and available_to must be set together")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	if cmd.AvailableFrom != "" {
		// Reject windows the slot walker could not expand.
		if _, err := appointment.WindowSlots(cmd.AvailableFrom, cmd.AvailableTo); err != nil {
			return nil, &ValidationError{Fields: []string{err.Error()}}
		}
		cmd.AvailableFrom = appointment.NormalizeClock(cmd.AvailableFrom)
		cmd.AvailableTo = appointment.NormalizeClock(cmd.AvailableTo)
	}

	d := &doctor.Doctor{
		EmployeeID:      cmd.EmployeeID,
		FirstName:       cmd.FirstName,
		LastName:        cmd.LastName,
		Email:           cmd.Email,
		Phone:           cmd.Phone,
		Specialization:  cmd.Specialization,
		LicenseNumber:   cmd.LicenseNumber,
		DepartmentID:    cmd.DepartmentID,
		ConsultationFee: cmd.ConsultationFee,
		ExperienceYears: cmd.ExperienceYears,
		AvailableFrom:   cmd.AvailableFrom,
		AvailableTo:     cmd.AvailableTo,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "doctor",
		ResourceID:   d.ID.String(),
		IPAddress:    ip,
	})
	return d, nil
}

func (s *DoctorService) Get(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) List(ctx context.Context) ([]*doctor.Doctor, error) {
	return s.repo.List(ctx)
}

// ListByPatient returns the distinct doctors a patient has appointments with.
func (s *DoctorService) ListByPatient(ctx context.Context, patientID uuid.UUID, caller *domain.Claims) ([]*doctor.Doctor, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != patientID {
			return nil, ErrForbidden
		}
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *DoctorService) Update(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateCommand, caller *domain.Claims, ip string) (*doctor.Doctor, error) {
	if caller.Role == domain.RoleDoctor {
		if caller.DoctorID == nil || *caller.DoctorID != id {
			return nil, ErrForbidden
		}
	}

	if cmd.AvailableFrom != nil || cmd.AvailableTo != nil {
		if cmd.AvailableFrom == nil || cmd.AvailableTo == nil {
			return nil, &ValidationError{Fields: []string{"available_from and available_to must be set together"}}
		}
		if *cmd.AvailableFrom != "" || *cmd.AvailableTo != "" {
			if _, err := appointment.WindowSlots(*cmd.AvailableFrom, *cmd.AvailableTo); err != nil {
				return nil, &ValidationError{Fields: []string{err.Error()}}
			}
			from := appointment.NormalizeClock(*cmd.AvailableFrom)
			to := appointment.NormalizeClock(*cmd.AvailableTo)
			cmd.AvailableFrom = &from
			cmd.AvailableTo = &to
		}
	}

	d, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "update",
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return d, nil
}

func (s *DoctorService) Delete(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}
