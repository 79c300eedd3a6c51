package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Doctor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EmployeeID     string     `gorm:"column:employee_id;type:varchar(50);uniqueIndex;not null" json:"employee_id"`
	FirstName      string     `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName       string     `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	Email          string     `gorm:"column:email;type:varchar(255)" json:"email"`
	Phone          string     `gorm:"column:phone;type:varchar(20)" json:"phone"`
	Specialization string     `gorm:"column:specialization;type:varchar(100)" json:"specialization"`
	LicenseNumber  string     `gorm:"column:license_number;type:varchar(50)" json:"license_number"`
	DepartmentID   *uuid.UUID `gorm:"column:department_id;type:uuid;index" json:"department_id,omitempty"`

	ConsultationFee float64 `gorm:"column:consultation_fee;type:numeric(10,2)" json:"consultation_fee"`
	ExperienceYears int     `gorm:"column:experience_years" json:"experience_years"`

	// Optional availability window; when both are set the booking grid is
	// walked from AvailableFrom to AvailableTo in half-hour steps instead of
	// using the fixed default grid.
	AvailableFrom string `gorm:"column:available_from;type:varchar(5)" json:"available_from,omitempty"`
	AvailableTo   string `gorm:"column:available_to;type:varchar(5)" json:"available_to,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// HasAvailabilityWindow reports whether a per-doctor window replaces the
// default slot grid.
func (d *Doctor) HasAvailabilityWindow() bool {
	return d.AvailableFrom != "" && d.AvailableTo != ""
}

type CreateCommand struct {
	EmployeeID      string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Specialization  string
	LicenseNumber   string
	DepartmentID    *uuid.UUID
	ConsultationFee float64
	ExperienceYears int
	AvailableFrom   string
	AvailableTo     string
}

type UpdateCommand struct {
	Email           *string
	Phone           *string
	Specialization  *string
	LicenseNumber   *string
	DepartmentID    *uuid.UUID
	ConsultationFee *float64
	ExperienceYears *int
	AvailableFrom   *string
	AvailableTo     *string
}
