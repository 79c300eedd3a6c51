package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new appointment. A violation of the slot uniqueness
	// index (doctor, date, time, non-cancelled) is returned as ErrSlotTaken.
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Update applies partial updates; ErrAppointmentNotFound when missing.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateCommand) (*Appointment, error)

	// Delete removes the row; ErrAppointmentNotFound when missing.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns every appointment, newest date first.
	List(ctx context.Context) ([]*Appointment, error)

	// ListByDoctor returns a doctor's appointments, optionally restricted to
	// one calendar date.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]*Appointment, error)

	// ListByPatient returns a patient's appointments, newest date first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)

	// ExistsForPatientDoctorDate reports whether the patient already has any
	// appointment with the doctor on that date, at any time.
	ExistsForPatientDoctorDate(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time) (bool, error)

	// ExistsForSlot reports whether the exact (doctor, date, time) slot is
	// taken by a non-cancelled appointment.
	ExistsForSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime string) (bool, error)

	// UpdateStatus sets the status of one row; ErrAppointmentNotFound when missing.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	DoctorStats(ctx context.Context, doctorID uuid.UUID, today time.Time) (*DoctorStats, error)
	PatientStats(ctx context.Context, patientID uuid.UUID, today time.Time) (*PatientStats, error)

	// Count and CountUpcoming feed the admin dashboard.
	Count(ctx context.Context) (int64, error)
	CountUpcoming(ctx context.Context, today time.Time) (int64, error)
}
