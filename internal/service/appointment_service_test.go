package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/doctor"
)

func newTestAppointmentService(t *testing.T) (*AppointmentService, *fakeAppointmentRepo, *fakeDoctorRepo) {
	t.Helper()
	apptRepo := newFakeAppointmentRepo()
	docRepo := newFakeDoctorRepo()
	notifSvc := NewNotificationService(&fakeNotificationRepo{}, &fakeDirectory{}, testMetrics, testLogger())
	t.Cleanup(notifSvc.Shutdown)
	auditSvc := NewAuditService(&fakeAuditRepo{}, testLogger())
	t.Cleanup(auditSvc.Shutdown)

	svc := NewAppointmentService(apptRepo, docRepo, notifSvc, auditSvc, testMetrics, testLogger())
	return svc, apptRepo, docRepo
}

func seedDoctor(t *testing.T, repo *fakeDoctorRepo, from, to string) uuid.UUID {
	t.Helper()
	d := &doctor.Doctor{
		EmployeeID:    "EMP-" + uuid.NewString()[:8],
		FirstName:     "Asha",
		LastName:      "Rao",
		AvailableFrom: from,
		AvailableTo:   to,
	}
	require.NoError(t, repo.Create(context.Background(), d))
	return d.ID
}

func adminCaller() *domain.Claims {
	return &domain.Claims{UserID: uuid.New(), Username: "admin", Role: domain.RoleAdmin}
}

func patientCaller(patientID uuid.UUID) *domain.Claims {
	return &domain.Claims{UserID: uuid.New(), Username: "pt", Role: domain.RolePatient, PatientID: &patientID}
}

func bookCmd(doctorID, patientID uuid.UUID, date time.Time, slot string) *appointment.CreateCommand {
	return &appointment.CreateCommand{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		StartTime: slot,
	}
}

func TestListSlotsDefaultGrid(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	slots, err := svc.ListSlots(context.Background(), docID, day)
	require.NoError(t, err)

	assert.Len(t, slots.All, 13)
	assert.Empty(t, slots.Booked)
	assert.Equal(t, slots.All, slots.Available)
}

func TestListSlotsUsesAvailabilityWindow(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "10:00", "12:00")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	slots, err := svc.ListSlots(context.Background(), docID, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30", "12:00"}, slots.All)
}

func TestListSlotsPartitionsBooked(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "09:30"), adminCaller(), "127.0.0.1")
	require.NoError(t, err)
	// Stored with seconds; normalization must still match the slot key.
	_, err = svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "14:00:00"), adminCaller(), "127.0.0.1")
	require.NoError(t, err)

	slots, err := svc.ListSlots(context.Background(), docID, day)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"09:30", "14:00"}, slots.Booked)
	assert.Len(t, slots.Available, 11)
	assert.NotContains(t, slots.Available, "09:30")
	assert.NotContains(t, slots.Available, "14:00")

	// Partition invariant: booked and available rebuild the full grid.
	assert.Len(t, append(slots.Booked, slots.Available...), len(slots.All))
}

func TestListSlotsIsReadOnly(t *testing.T) {
	svc, repo, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := svc.ListSlots(context.Background(), docID, day)
		require.NoError(t, err)
	}
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListSlotsUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestAppointmentService(t)
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.ListSlots(context.Background(), uuid.New(), day)
	assert.ErrorIs(t, err, doctor.ErrDoctorNotFound)
}

func TestBookRejectsTakenSlot(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "09:00"), adminCaller(), "")
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "09:00"), adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrSlotTaken)
}

func TestBookRejectsSameDayDuplicate(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	ptID := uuid.New()
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(context.Background(), bookCmd(docID, ptID, day, "09:00"), adminCaller(), "")
	require.NoError(t, err)

	// Different slot, same doctor and date: still rejected.
	_, err = svc.Book(context.Background(), bookCmd(docID, ptID, day, "15:00"), adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrPatientDoubleBooked)
}

func TestBookAllowsSameSlotDifferentDay(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "09:00"), adminCaller(), "")
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), bookCmd(docID, uuid.New(), day.AddDate(0, 0, 1), "09:00"), adminCaller(), "")
	assert.NoError(t, err)
}

func TestBookPatientBooksSelf(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	ptID := uuid.New()
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	// Submitted patient id is ignored for patient callers.
	cmd := bookCmd(docID, uuid.New(), day, "10:00")
	a, err := svc.Book(context.Background(), cmd, patientCaller(ptID), "")
	require.NoError(t, err)
	assert.Equal(t, ptID, a.PatientID)
}

func TestBookValidation(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(context.Background(), bookCmd(docID, uuid.New(), time.Time{}, "09:00"), adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrDateRequired)

	_, err = svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, ""), adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrTimeRequired)

	bad := bookCmd(docID, uuid.New(), day, "09:00")
	bad.DurationMins = 2
	_, err = svc.Book(context.Background(), bad, adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrInvalidDuration)

	bad = bookCmd(docID, uuid.New(), day, "09:00")
	bad.Status = "bogus"
	_, err = svc.Book(context.Background(), bad, adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrInvalidStatus)
}

func TestBookDefaults(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	a, err := svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "9:30"), adminCaller(), "")
	require.NoError(t, err)

	assert.Equal(t, appointment.StatusScheduled, a.Status)
	assert.Equal(t, 30, a.DurationMins)
	assert.Equal(t, "09:30", a.StartTime)
}

func TestChangeStatus(t *testing.T) {
	svc, repo, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	a, err := svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "09:00"), adminCaller(), "")
	require.NoError(t, err)

	require.NoError(t, svc.ChangeStatus(context.Background(), a.ID, "Completed", adminCaller(), ""))

	got, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, got.Status)

	// Permissive transitions: completed back to scheduled is allowed.
	require.NoError(t, svc.ChangeStatus(context.Background(), a.ID, "scheduled", adminCaller(), ""))

	err = svc.ChangeStatus(context.Background(), a.ID, "archived", adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrInvalidStatus)

	err = svc.ChangeStatus(context.Background(), uuid.New(), "cancelled", adminCaller(), "")
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestCancelledSlotReopens(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	a, err := svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "11:00"), adminCaller(), "")
	require.NoError(t, err)

	require.NoError(t, svc.ChangeStatus(context.Background(), a.ID, "cancelled", adminCaller(), ""))

	slots, err := svc.ListSlots(context.Background(), docID, day)
	require.NoError(t, err)
	assert.NotContains(t, slots.Booked, "11:00")
	assert.Contains(t, slots.Available, "11:00")

	// And the slot can be booked again by a different patient.
	_, err = svc.Book(context.Background(), bookCmd(docID, uuid.New(), day, "11:00"), adminCaller(), "")
	assert.NoError(t, err)
}

func TestPatientListScopedToSelf(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	mine := uuid.New()
	other := uuid.New()
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(context.Background(), bookCmd(docID, mine, day, "09:00"), adminCaller(), "")
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), bookCmd(docID, other, day, "09:30"), adminCaller(), "")
	require.NoError(t, err)

	list, err := svc.List(context.Background(), patientCaller(mine))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine, list[0].PatientID)

	_, err = svc.ListByPatient(context.Background(), other, patientCaller(mine))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPatientStats(t *testing.T) {
	svc, _, docRepo := newTestAppointmentService(t)
	docID := seedDoctor(t, docRepo, "", "")
	ptID := uuid.New()
	future := appointment.DateOnly(time.Now().AddDate(0, 0, 7))

	a, err := svc.Book(context.Background(), bookCmd(docID, ptID, future, "09:00"), adminCaller(), "")
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), bookCmd(docID, ptID, future.AddDate(0, 0, 1), "09:00"), adminCaller(), "")
	require.NoError(t, err)

	require.NoError(t, svc.ChangeStatus(context.Background(), a.ID, "completed", adminCaller(), ""))

	stats, err := svc.PatientStats(context.Background(), ptID, patientCaller(ptID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Upcoming)
}
