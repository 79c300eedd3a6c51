package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/medicalrecord"
)

type MedicalRecordService struct {
	repo     medicalrecord.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewMedicalRecordService(repo medicalrecord.Repository, auditSvc *AuditService, log *zap.Logger) *MedicalRecordService {
	return &MedicalRecordService{repo: repo, auditSvc: auditSvc, log: log}
}

// Create records a clinical encounter. Doctor callers author records under
// their own linked doctor identity regardless of the submitted doctor_id.
func (s *MedicalRecordService) Create(ctx context.Context, cmd *medicalrecord.CreateCommand, caller *domain.Claims, ip string) (*medicalrecord.MedicalRecord, error) {
	if caller.Role == domain.RoleDoctor {
		if caller.DoctorID == nil {
			return nil, ErrForbidden
		}
		cmd.DoctorID = *caller.DoctorID
	}

	var problems []string
	if cmd.PatientID == uuid.Nil {
		problems = append(problems, "patient_id is required")
	}
	if cmd.DoctorID == uuid.Nil {
		problems = append(problems, "doctor_id is required")
	}
	if cmd.Diagnosis == "" {
		problems = append(problems, "diagnosis is required")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	if cmd.VisitDate.IsZero() {
		cmd.VisitDate = time.Now()
	}

	rec := &medicalrecord.MedicalRecord{
		PatientID:    cmd.PatientID,
		DoctorID:     cmd.DoctorID,
		VisitDate:    cmd.VisitDate,
		Diagnosis:    cmd.Diagnosis,
		Treatment:    cmd.Treatment,
		Prescription: cmd.Prescription,
		LabResults:   cmd.LabResults,
		Notes:        cmd.Notes,
		CreatedBy:    caller.UserID,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "medical_record",
		ResourceID:   rec.ID.String(),
		IPAddress:    ip,
	})
	return rec, nil
}

func (s *MedicalRecordService) List(ctx context.Context) ([]*medicalrecord.WithNames, error) {
	return s.repo.List(ctx)
}

func (s *MedicalRecordService) ListByPatient(ctx context.Context, patientID uuid.UUID, caller *domain.Claims) ([]*medicalrecord.WithNames, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != patientID {
			return nil, ErrForbidden
		}
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *MedicalRecordService) Delete(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "medical_record",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}
