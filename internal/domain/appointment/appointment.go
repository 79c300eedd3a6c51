package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is deliberately permissive: any status may be set from any other.
// The product allows e.g. completed back to scheduled when a visit is
// rescheduled after being closed out by mistake.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus lower-cases the input and validates membership.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Appointment stores the calendar date and the slot start time separately.
// StartTime is always the normalized "HH:MM" slot key; Date carries no
// time-of-day component.
type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor_id"`

	Date      time.Time `gorm:"column:appointment_date;type:date;not null;index" json:"appointment_date"`
	StartTime string    `gorm:"column:start_time;type:varchar(5);not null" json:"appointment_time"`

	DurationMins int    `gorm:"column:duration_mins;not null;default:30" json:"duration_minutes"`
	Type         string `gorm:"column:appointment_type;type:varchar(100)" json:"appointment_type"`
	Status       Status `gorm:"column:status;type:varchar(30);not null;default:'scheduled';index" json:"status"`

	Reason string `gorm:"column:reason_for_visit;type:text" json:"reason_for_visit"`
	Notes  string `gorm:"column:notes;type:text" json:"notes"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// DateOnly truncates t to its calendar date in UTC. All repository date
// comparisons go through this so "same day" means the same stored value.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type CreateCommand struct {
	PatientID    uuid.UUID
	DoctorID     uuid.UUID
	Date         time.Time
	StartTime    string
	DurationMins int
	Type         string
	Status       string
	Reason       string
	Notes        string
	CreatedBy    uuid.UUID
}

type UpdateCommand struct {
	Date         *time.Time
	StartTime    *string
	DurationMins *int
	Type         *string
	Status       *string
	Reason       *string
	Notes        *string
}

// SlotAvailability partitions the candidate grid for one doctor and date.
// Available and Booked are disjoint and their union is All.
type SlotAvailability struct {
	All       []string `json:"allSlots"`
	Booked    []string `json:"bookedSlots"`
	Available []string `json:"availableSlots"`
}

type DoctorStats struct {
	Today    int64 `json:"today_appointments"`
	Upcoming int64 `json:"upcoming_appointments"`
	Total    int64 `json:"total_appointments"`
}

type PatientStats struct {
	Upcoming  int64 `json:"upcoming_appointments"`
	Completed int64 `json:"completed_appointments"`
	Total     int64 `json:"total_appointments"`
}
