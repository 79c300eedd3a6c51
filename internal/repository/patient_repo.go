package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careops/hms-api/internal/domain/patient"
)

type PatientRepo struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepo {
	return &PatientRepo{db: db}
}

func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return patient.ErrPatientAlreadyExists
	}
	return err
}

func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepo) List(ctx context.Context) ([]*patient.WithDiagnosis, error) {
	var rows []*patient.WithDiagnosis
	err := r.db.WithContext(ctx).Model(&patient.Patient{}).
		Select(`patients.*, (
			SELECT mr.diagnosis FROM medical_records mr
			WHERE mr.patient_id = patients.id AND mr.deleted_at IS NULL
			ORDER BY mr.visit_date DESC LIMIT 1
		) AS latest_diagnosis`).
		Order("patients.last_name, patients.first_name").
		Scan(&rows).Error
	return rows, err
}

func (r *PatientRepo) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdateCommand) (*patient.Patient, error) {
	updates := map[string]any{}
	if cmd.Phone != nil {
		updates["phone"] = *cmd.Phone
	}
	if cmd.Email != nil {
		updates["email"] = *cmd.Email
	}
	if cmd.Address != nil {
		updates["address"] = *cmd.Address
	}
	if cmd.EmergencyContactName != nil {
		updates["emergency_contact_name"] = *cmd.EmergencyContactName
	}
	if cmd.EmergencyContactPhone != nil {
		updates["emergency_contact_phone"] = *cmd.EmergencyContactPhone
	}
	if cmd.InsuranceProvider != nil {
		updates["insurance_provider"] = *cmd.InsuranceProvider
	}
	if cmd.InsurancePolicyNumber != nil {
		updates["insurance_policy_number"] = *cmd.InsurancePolicyNumber
	}
	if cmd.Allergies != nil {
		updates["allergies"] = *cmd.Allergies
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, patient.ErrPatientNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&patient.Patient{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*patient.Patient, error) {
	var rows []*patient.Patient
	err := r.db.WithContext(ctx).
		Distinct("patients.*").
		Joins("JOIN appointments ON appointments.patient_id = patients.id AND appointments.deleted_at IS NULL").
		Where("appointments.doctor_id = ?", doctorID).
		Find(&rows).Error
	return rows, err
}

func (r *PatientRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&patient.Patient{}).Count(&count).Error
	return count, err
}

type AttachmentRepo struct {
	db *gorm.DB
}

func NewAttachmentRepo(db *gorm.DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

func (r *AttachmentRepo) Create(ctx context.Context, a *patient.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AttachmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Attachment, error) {
	var a patient.Attachment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttachmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*patient.Attachment, error) {
	var rows []*patient.Attachment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("uploaded_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *AttachmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&patient.Attachment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return patient.ErrAttachmentNotFound
	}
	return nil
}
