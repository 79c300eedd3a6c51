package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	mr "github.com/careops/hms-api/internal/domain/medicalrecord"
)

type MedicalRecordRepo struct {
	db *gorm.DB
}

func NewMedicalRecordRepo(db *gorm.DB) *MedicalRecordRepo {
	return &MedicalRecordRepo{db: db}
}

func (r *MedicalRecordRepo) Create(ctx context.Context, rec *mr.MedicalRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *MedicalRecordRepo) List(ctx context.Context) ([]*mr.WithNames, error) {
	return r.listWithNames(ctx, nil)
}

func (r *MedicalRecordRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*mr.WithNames, error) {
	return r.listWithNames(ctx, &patientID)
}

func (r *MedicalRecordRepo) listWithNames(ctx context.Context, patientID *uuid.UUID) ([]*mr.WithNames, error) {
	q := r.db.WithContext(ctx).Model(&mr.MedicalRecord{}).
		Select(`medical_records.*,
			patients.first_name AS patient_first_name,
			patients.last_name AS patient_last_name,
			doctors.first_name AS doctor_first_name,
			doctors.last_name AS doctor_last_name`).
		Joins("JOIN patients ON patients.id = medical_records.patient_id").
		Joins("JOIN doctors ON doctors.id = medical_records.doctor_id").
		Order("medical_records.visit_date DESC")

	if patientID != nil {
		q = q.Where("medical_records.patient_id = ?", *patientID)
	}

	var rows []*mr.WithNames
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *MedicalRecordRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&mr.MedicalRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return mr.ErrRecordNotFound
	}
	return nil
}
