package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/notification"
	"github.com/careops/hms-api/pkg/metrics"
)

// UserDirectory resolves the user accounts behind doctor and patient records
// so notifications can be addressed to logins rather than clinical rows.
type UserDirectory interface {
	GetByDoctorID(ctx context.Context, doctorID uuid.UUID) (*domain.User, error)
	GetByPatientID(ctx context.Context, patientID uuid.UUID) (*domain.User, error)
	GetAdmin(ctx context.Context) (*domain.User, error)
}

type NotificationService struct {
	repo    notification.Repository
	users   UserDirectory
	metrics *metrics.Collector
	log     *zap.Logger
	entries chan *notification.Notification
	done    chan struct{}
}

const notificationBufferSize = 4096

func NewNotificationService(repo notification.Repository, users UserDirectory, m *metrics.Collector, log *zap.Logger) *NotificationService {
	svc := &NotificationService{
		repo:    repo,
		users:   users,
		metrics: m,
		log:     log,
		entries: make(chan *notification.Notification, notificationBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// NotifyAppointmentBooked fans out to the parties not responsible for the
// booking. Fire-and-forget: the booking has already committed and never
// waits on, or fails because of, notification writes.
func (s *NotificationService) NotifyAppointmentBooked(ctx context.Context, a *appointment.Appointment, creator *domain.Claims) {
	date := a.Date.Format("2006-01-02")

	switch creator.Role {
	case domain.RoleAdmin:
		s.notifyDoctor(ctx, a.DoctorID, fmt.Sprintf("A new appointment has been scheduled for you on %s", date))
		s.notifyPatient(ctx, a.PatientID, fmt.Sprintf("Your appointment has been scheduled on %s", date))
	case domain.RoleDoctor:
		s.notifyPatient(ctx, a.PatientID, fmt.Sprintf("A new appointment has been created by your doctor on %s", date))
		s.notifyAdmin(ctx, fmt.Sprintf("Doctor %s created a new appointment", a.DoctorID))
	case domain.RolePatient:
		s.notifyDoctor(ctx, a.DoctorID, fmt.Sprintf("A new appointment has been requested by patient %s on %s", a.PatientID, date))
		s.notifyAdmin(ctx, fmt.Sprintf("Patient %s created a new appointment", a.PatientID))
	}
}

func (s *NotificationService) notifyDoctor(ctx context.Context, doctorID uuid.UUID, message string) {
	u, err := s.users.GetByDoctorID(ctx, doctorID)
	if err != nil {
		s.log.Debug("no user account for doctor, skipping notification",
			zap.String("doctor_id", doctorID.String()))
		return
	}
	s.enqueue(u.ID, message)
}

func (s *NotificationService) notifyPatient(ctx context.Context, patientID uuid.UUID, message string) {
	u, err := s.users.GetByPatientID(ctx, patientID)
	if err != nil {
		s.log.Debug("no user account for patient, skipping notification",
			zap.String("patient_id", patientID.String()))
		return
	}
	s.enqueue(u.ID, message)
}

func (s *NotificationService) notifyAdmin(ctx context.Context, message string) {
	u, err := s.users.GetAdmin(ctx)
	if err != nil {
		s.log.Warn("no admin account to notify")
		return
	}
	s.enqueue(u.ID, message)
}

func (s *NotificationService) enqueue(userID uuid.UUID, message string) {
	n := &notification.Notification{UserID: userID, Message: message}
	select {
	case s.entries <- n:
	default:
		s.metrics.NotificationsDropped.Inc()
		s.log.Warn("notification buffer full, dropping",
			zap.String("user_id", userID.String()))
	}
}

// Create persists a notification synchronously (the explicit POST endpoint).
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, message string) (*notification.Notification, error) {
	if message == "" {
		return nil, &ValidationError{Fields: []string{"message is required"}}
	}
	n := &notification.Notification{UserID: userID, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	s.metrics.NotificationsEmitted.Inc()
	return n, nil
}

// ListForUser returns a user's notifications; non-admins may only read
// their own.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, caller *domain.Claims) ([]*notification.Notification, error) {
	if caller.Role != domain.RoleAdmin && caller.UserID != userID {
		return nil, ErrForbidden
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID, caller *domain.Claims) error {
	if caller.Role != domain.RoleAdmin && caller.UserID != userID {
		return ErrForbidden
	}
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("notification service shutdown timed out; some entries may be lost")
	}
}

func (s *NotificationService) worker() {
	defer close(s.done)
	for n := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, n); err != nil {
			s.log.Error("failed to persist notification", zap.Error(err))
		} else {
			s.metrics.NotificationsEmitted.Inc()
		}
		cancel()
	}
}
