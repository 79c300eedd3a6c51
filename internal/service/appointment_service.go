package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/doctor"
	"github.com/careops/hms-api/pkg/metrics"
)

type AppointmentService struct {
	repo       appointment.Repository
	doctorRepo doctor.Repository
	notifier   *NotificationService
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	doctorRepo doctor.Repository,
	notifier *NotificationService,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:       repo,
		doctorRepo: doctorRepo,
		notifier:   notifier,
		auditSvc:   auditSvc,
		metrics:    m,
		log:        log,
	}
}

// ListSlots partitions the doctor's candidate grid for one date into booked
// and available. The grid comes from the doctor's availability window when
// one is configured, otherwise the fixed default grid. Read-only.
func (s *AppointmentService) ListSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*appointment.SlotAvailability, error) {
	if date.IsZero() {
		return nil, appointment.ErrDateRequired
	}

	doc, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	var all []string
	if doc.HasAvailabilityWindow() {
		all, err = appointment.WindowSlots(doc.AvailableFrom, doc.AvailableTo)
		if err != nil {
			s.log.Warn("invalid availability window, falling back to default grid",
				zap.String("doctor_id", doctorID.String()),
				zap.Error(err),
			)
			all = appointment.DefaultSlots()
		}
	} else {
		all = appointment.DefaultSlots()
	}

	existing, err := s.repo.ListByDoctor(ctx, doctorID, &date)
	if err != nil {
		return nil, fmt.Errorf("fetching appointments: %w", err)
	}

	// Cancelled rows do not hold their slot; the uniqueness index ignores
	// them too, so the grid and the insert path agree.
	taken := make(map[string]bool, len(existing))
	for _, a := range existing {
		if a.Status == appointment.StatusCancelled {
			continue
		}
		taken[appointment.NormalizeClock(a.StartTime)] = true
	}

	out := &appointment.SlotAvailability{
		All:       all,
		Booked:    make([]string, 0, len(taken)),
		Available: make([]string, 0, len(all)),
	}
	for _, slot := range all {
		if taken[slot] {
			out.Booked = append(out.Booked, slot)
		} else {
			out.Available = append(out.Available, slot)
		}
	}
	return out, nil
}

// Book admits a new appointment. Patient callers always book for their own
// linked patient record; admins and doctors supply the patient explicitly.
// The two existence checks give precise conflict messages; the slot
// uniqueness index in storage is what actually arbitrates concurrent
// attempts, and its violation surfaces here as ErrSlotTaken.
func (s *AppointmentService) Book(ctx context.Context, cmd *appointment.CreateCommand, caller *domain.Claims, ip string) (*appointment.Appointment, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil {
			return nil, ErrForbidden
		}
		cmd.PatientID = *caller.PatientID
	}

	if cmd.Date.IsZero() {
		return nil, appointment.ErrDateRequired
	}
	if cmd.StartTime == "" {
		return nil, appointment.ErrTimeRequired
	}
	cmd.Date = appointment.DateOnly(cmd.Date)
	cmd.StartTime = appointment.NormalizeClock(cmd.StartTime)
	if cmd.PatientID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"patient_id is required"}}
	}
	if cmd.DoctorID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"doctor_id is required"}}
	}
	if cmd.DurationMins == 0 {
		cmd.DurationMins = 30
	}
	if cmd.DurationMins < 5 || cmd.DurationMins > 480 {
		return nil, appointment.ErrInvalidDuration
	}

	status := appointment.StatusScheduled
	if cmd.Status != "" {
		parsed, err := appointment.ParseStatus(cmd.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	// Day-granular check: any second visit with this doctor that day is
	// rejected, even at a different time.
	dup, err := s.repo.ExistsForPatientDoctorDate(ctx, cmd.PatientID, cmd.DoctorID, cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("checking patient conflicts: %w", err)
	}
	if dup {
		s.metrics.BookingConflicts.WithLabelValues("patient_day").Inc()
		return nil, appointment.ErrPatientDoubleBooked
	}

	// Slot-granular check.
	taken, err := s.repo.ExistsForSlot(ctx, cmd.DoctorID, cmd.Date, cmd.StartTime)
	if err != nil {
		return nil, fmt.Errorf("checking slot conflicts: %w", err)
	}
	if taken {
		s.metrics.BookingConflicts.WithLabelValues("slot").Inc()
		return nil, appointment.ErrSlotTaken
	}

	a := &appointment.Appointment{
		PatientID:    cmd.PatientID,
		DoctorID:     cmd.DoctorID,
		Date:         cmd.Date,
		StartTime:    cmd.StartTime,
		DurationMins: cmd.DurationMins,
		Type:         cmd.Type,
		Status:       status,
		Reason:       cmd.Reason,
		Notes:        cmd.Notes,
		CreatedBy:    caller.UserID,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, appointment.ErrSlotTaken) {
			// Lost the race after passing the pre-checks.
			s.metrics.BookingConflicts.WithLabelValues("slot").Inc()
			return nil, err
		}
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.metrics.AppointmentsBooked.Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	s.notifier.NotifyAppointmentBooked(ctx, a, caller)

	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID, caller *domain.Claims) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != a.PatientID {
			return nil, ErrForbidden
		}
	}
	return a, nil
}

func (s *AppointmentService) List(ctx context.Context, caller *domain.Claims) ([]*appointment.Appointment, error) {
	// Patients only ever see their own appointments.
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil {
			return nil, ErrForbidden
		}
		return s.repo.ListByPatient(ctx, *caller.PatientID)
	}
	return s.repo.List(ctx)
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]*appointment.Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID, date)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID uuid.UUID, caller *domain.Claims) ([]*appointment.Appointment, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != patientID {
			return nil, ErrForbidden
		}
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateCommand, caller *domain.Claims, ip string) (*appointment.Appointment, error) {
	if cmd.Status != nil {
		parsed, err := appointment.ParseStatus(*cmd.Status)
		if err != nil {
			return nil, err
		}
		str := string(parsed)
		cmd.Status = &str
	}

	a, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return a, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}

// ChangeStatus normalizes to lower case and validates membership. No
// transition graph: any valid status may replace any other.
func (s *AppointmentService) ChangeStatus(ctx context.Context, id uuid.UUID, raw string, caller *domain.Claims, ip string) error {
	status, err := appointment.ParseStatus(raw)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.metrics.AppointmentsByStatus.WithLabelValues(string(status)).Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, status),
	})
	return nil
}

func (s *AppointmentService) DoctorStats(ctx context.Context, doctorID uuid.UUID) (*appointment.DoctorStats, error) {
	return s.repo.DoctorStats(ctx, doctorID, time.Now())
}

func (s *AppointmentService) PatientStats(ctx context.Context, patientID uuid.UUID, caller *domain.Claims) (*appointment.PatientStats, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != patientID {
			return nil, ErrForbidden
		}
	}
	return s.repo.PatientStats(ctx, patientID, time.Now())
}
