package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careops/hms-api/internal/domain/appointment"
)

type AppointmentRepo struct {
	db *gorm.DB
}

func NewAppointmentRepo(db *gorm.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	a.Date = appointment.DateOnly(a.Date)
	a.StartTime = appointment.NormalizeClock(a.StartTime)

	err := r.db.WithContext(ctx).Create(a).Error
	if err != nil {
		// The partial unique index on (doctor, date, time) is the authority
		// on slot collisions; a violation means someone else won the slot.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appointment.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateCommand) (*appointment.Appointment, error) {
	updates := map[string]any{}
	if cmd.Date != nil {
		updates["appointment_date"] = appointment.DateOnly(*cmd.Date)
	}
	if cmd.StartTime != nil {
		updates["start_time"] = appointment.NormalizeClock(*cmd.StartTime)
	}
	if cmd.DurationMins != nil {
		updates["duration_mins"] = *cmd.DurationMins
	}
	if cmd.Type != nil {
		updates["appointment_type"] = *cmd.Type
	}
	if cmd.Status != nil {
		updates["status"] = *cmd.Status
	}
	if cmd.Reason != nil {
		updates["reason_for_visit"] = *cmd.Reason
	}
	if cmd.Notes != nil {
		updates["notes"] = *cmd.Notes
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, appointment.ErrSlotTaken
			}
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, appointment.ErrAppointmentNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *AppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepo) List(ctx context.Context) ([]*appointment.Appointment, error) {
	var rows []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Order("appointment_date DESC, start_time DESC").
		Find(&rows).Error
	return rows, err
}

func (r *AppointmentRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]*appointment.Appointment, error) {
	q := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID)
	if date != nil {
		q = q.Where("appointment_date = ?", appointment.DateOnly(*date))
	}

	var rows []*appointment.Appointment
	err := q.Order("appointment_date DESC, start_time DESC").Find(&rows).Error
	return rows, err
}

func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var rows []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_date DESC, start_time DESC").
		Find(&rows).Error
	return rows, err
}

func (r *AppointmentRepo) ExistsForPatientDoctorDate(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("patient_id = ? AND doctor_id = ? AND appointment_date = ?",
			patientID, doctorID, appointment.DateOnly(date)).
		Count(&count).Error
	return count > 0, err
}

func (r *AppointmentRepo) ExistsForSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND start_time = ? AND status <> ?",
			doctorID, appointment.DateOnly(date), appointment.NormalizeClock(startTime), appointment.StatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error {
	res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepo) DoctorStats(ctx context.Context, doctorID uuid.UUID, today time.Time) (*appointment.DoctorStats, error) {
	day := appointment.DateOnly(today)
	stats := &appointment.DoctorStats{}

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&appointment.Appointment{}).Where("doctor_id = ?", doctorID)
	}

	if err := base().Where("appointment_date = ?", day).Count(&stats.Today).Error; err != nil {
		return nil, err
	}
	if err := base().Where("appointment_date >= ? AND status = ?", day, appointment.StatusScheduled).
		Count(&stats.Upcoming).Error; err != nil {
		return nil, err
	}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *AppointmentRepo) PatientStats(ctx context.Context, patientID uuid.UUID, today time.Time) (*appointment.PatientStats, error) {
	day := appointment.DateOnly(today)
	stats := &appointment.PatientStats{}

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&appointment.Appointment{}).Where("patient_id = ?", patientID)
	}

	if err := base().Where("appointment_date >= ? AND status = ?", day, appointment.StatusScheduled).
		Count(&stats.Upcoming).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", appointment.StatusCompleted).Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *AppointmentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Count(&count).Error
	return count, err
}

func (r *AppointmentRepo) CountUpcoming(ctx context.Context, today time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("appointment_date >= ?", appointment.DateOnly(today)).
		Count(&count).Error
	return count, err
}
