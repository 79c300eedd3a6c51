package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/doctor"
	"github.com/careops/hms-api/internal/domain/notification"
	"github.com/careops/hms-api/internal/domain/patient"
	"github.com/careops/hms-api/pkg/metrics"
)

// One collector for the whole test binary; the prometheus default registry
// rejects duplicate metric names.
var testMetrics = metrics.NewCollector("hms_test")

func testLogger() *zap.Logger {
	return zap.NewNop()
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*appointment.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: map[uuid.UUID]*appointment.Appointment{}}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.Date = appointment.DateOnly(a.Date)
	a.StartTime = appointment.NormalizeClock(a.StartTime)

	// Mirrors the slot uniqueness index over non-cancelled rows.
	for _, other := range r.items {
		if other.DoctorID == a.DoctorID &&
			other.Date.Equal(a.Date) &&
			other.StartTime == a.StartTime &&
			other.Status != appointment.StatusCancelled {
			return appointment.ErrSlotTaken
		}
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateCommand) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if cmd.Date != nil {
		a.Date = appointment.DateOnly(*cmd.Date)
	}
	if cmd.StartTime != nil {
		a.StartTime = appointment.NormalizeClock(*cmd.StartTime)
	}
	if cmd.DurationMins != nil {
		a.DurationMins = *cmd.DurationMins
	}
	if cmd.Type != nil {
		a.Type = *cmd.Type
	}
	if cmd.Status != nil {
		a.Status = appointment.Status(*cmd.Status)
	}
	if cmd.Reason != nil {
		a.Reason = *cmd.Reason
	}
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*appointment.Appointment, 0, len(r.items))
	for _, a := range r.items {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeAppointmentRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.items {
		if a.DoctorID != doctorID {
			continue
		}
		if date != nil && !a.Date.Equal(appointment.DateOnly(*date)) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.items {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ExistsForPatientDoctorDate(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := appointment.DateOnly(date)
	for _, a := range r.items {
		if a.PatientID == patientID && a.DoctorID == doctorID && a.Date.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) ExistsForSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := appointment.DateOnly(date)
	slot := appointment.NormalizeClock(startTime)
	for _, a := range r.items {
		if a.DoctorID == doctorID && a.Date.Equal(day) && a.StartTime == slot && a.Status != appointment.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAppointmentRepo) DoctorStats(ctx context.Context, doctorID uuid.UUID, today time.Time) (*appointment.DoctorStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := appointment.DateOnly(today)
	var stats appointment.DoctorStats
	for _, a := range r.items {
		if a.DoctorID != doctorID {
			continue
		}
		stats.Total++
		if a.Date.Equal(day) {
			stats.Today++
		}
		if !a.Date.Before(day) && a.Status == appointment.StatusScheduled {
			stats.Upcoming++
		}
	}
	return &stats, nil
}

func (r *fakeAppointmentRepo) PatientStats(ctx context.Context, patientID uuid.UUID, today time.Time) (*appointment.PatientStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := appointment.DateOnly(today)
	var stats appointment.PatientStats
	for _, a := range r.items {
		if a.PatientID != patientID {
			continue
		}
		stats.Total++
		if !a.Date.Before(day) && a.Status == appointment.StatusScheduled {
			stats.Upcoming++
		}
		if a.Status == appointment.StatusCompleted {
			stats.Completed++
		}
	}
	return &stats, nil
}

func (r *fakeAppointmentRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *fakeAppointmentRepo) CountUpcoming(ctx context.Context, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := appointment.DateOnly(today)
	var n int64
	for _, a := range r.items {
		if !a.Date.Before(day) && a.Status == appointment.StatusScheduled {
			n++
		}
	}
	return n, nil
}

type fakeDoctorRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*doctor.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{items: map[uuid.UUID]*doctor.Doctor{}}
}

func (r *fakeDoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.EmployeeID == d.EmployeeID {
			return doctor.ErrDoctorAlreadyExists
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	r.items[d.ID] = &cp
	return nil
}

func (r *fakeDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDoctorRepo) List(ctx context.Context) ([]*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*doctor.Doctor, 0, len(r.items))
	for _, d := range r.items {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDoctorRepo) Update(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateCommand) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	if cmd.AvailableFrom != nil {
		d.AvailableFrom = *cmd.AvailableFrom
	}
	if cmd.AvailableTo != nil {
		d.AvailableTo = *cmd.AvailableTo
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return doctor.ErrDoctorNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeDoctorRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*doctor.Doctor, error) {
	return nil, nil
}

func (r *fakeDoctorRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []*notification.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	r.items = append(r.items, &cp)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) all() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*notification.Notification, len(r.items))
	copy(out, r.items)
	return out
}

// fakeDirectory resolves doctor and patient records to user accounts.
type fakeDirectory struct {
	byDoctor  map[uuid.UUID]*domain.User
	byPatient map[uuid.UUID]*domain.User
	admin     *domain.User
}

func (d *fakeDirectory) GetByDoctorID(ctx context.Context, doctorID uuid.UUID) (*domain.User, error) {
	if u, ok := d.byDoctor[doctorID]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (d *fakeDirectory) GetByPatientID(ctx context.Context, patientID uuid.UUID) (*domain.User, error) {
	if u, ok := d.byPatient[patientID]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (d *fakeDirectory) GetAdmin(ctx context.Context) (*domain.User, error) {
	if d.admin == nil {
		return nil, ErrUserNotFound
	}
	return d.admin, nil
}

// stubPatientRepo satisfies patient.Repository for services that never reach
// patient storage in a given test.
type stubPatientRepo struct{}

func (stubPatientRepo) Create(ctx context.Context, p *patient.Patient) error { return nil }
func (stubPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return nil, patient.ErrPatientNotFound
}
func (stubPatientRepo) List(ctx context.Context) ([]*patient.WithDiagnosis, error) {
	return nil, nil
}
func (stubPatientRepo) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdateCommand) (*patient.Patient, error) {
	return nil, patient.ErrPatientNotFound
}
func (stubPatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return patient.ErrPatientNotFound
}
func (stubPatientRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*patient.Patient, error) {
	return nil, nil
}
func (stubPatientRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[uuid.UUID]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) GetByDoctorID(ctx context.Context, doctorID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.DoctorID != nil && *u.DoctorID == doctorID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) GetByPatientID(ctx context.Context, patientID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.PatientID != nil && *u.PatientID == patientID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) GetAdmin(ctx context.Context) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *domain.User
	for _, u := range r.items {
		if u.Role != domain.RoleAdmin {
			continue
		}
		if oldest == nil || u.CreatedAt.Before(oldest.CreatedAt) {
			oldest = u
		}
	}
	if oldest == nil {
		return nil, ErrUserNotFound
	}
	cp := *oldest
	return &cp, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.items))
	for _, u := range r.items {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeUserRepo) RecordLogin(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.items[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

type fakeAuditRepo struct {
	mu    sync.Mutex
	items []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, entry)
	return nil
}
