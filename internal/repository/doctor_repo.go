package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careops/hms-api/internal/domain/doctor"
)

type DoctorRepo struct {
	db *gorm.DB
}

func NewDoctorRepo(db *gorm.DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

func (r *DoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return doctor.ErrDoctorAlreadyExists
	}
	return err
}

func (r *DoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepo) List(ctx context.Context) ([]*doctor.Doctor, error) {
	var rows []*doctor.Doctor
	err := r.db.WithContext(ctx).Order("last_name, first_name").Find(&rows).Error
	return rows, err
}

func (r *DoctorRepo) Update(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateCommand) (*doctor.Doctor, error) {
	updates := map[string]any{}
	if cmd.Email != nil {
		updates["email"] = *cmd.Email
	}
	if cmd.Phone != nil {
		updates["phone"] = *cmd.Phone
	}
	if cmd.Specialization != nil {
		updates["specialization"] = *cmd.Specialization
	}
	if cmd.LicenseNumber != nil {
		updates["license_number"] = *cmd.LicenseNumber
	}
	if cmd.DepartmentID != nil {
		updates["department_id"] = *cmd.DepartmentID
	}
	if cmd.ConsultationFee != nil {
		updates["consultation_fee"] = *cmd.ConsultationFee
	}
	if cmd.ExperienceYears != nil {
		updates["experience_years"] = *cmd.ExperienceYears
	}
	if cmd.AvailableFrom != nil {
		updates["available_from"] = *cmd.AvailableFrom
	}
	if cmd.AvailableTo != nil {
		updates["available_to"] = *cmd.AvailableTo
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, doctor.ErrDoctorNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *DoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&doctor.Doctor{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*doctor.Doctor, error) {
	var rows []*doctor.Doctor
	err := r.db.WithContext(ctx).
		Distinct("doctors.*").
		Joins("JOIN appointments ON appointments.doctor_id = doctors.id AND appointments.deleted_at IS NULL").
		Where("appointments.patient_id = ?", patientID).
		Find(&rows).Error
	return rows, err
}

func (r *DoctorRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Count(&count).Error
	return count, err
}
