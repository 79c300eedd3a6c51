package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PatientNumber string    `gorm:"column:patient_number;type:varchar(50);uniqueIndex;not null" json:"patient_number"`
	FirstName     string    `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName      string    `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	DateOfBirth   time.Time `gorm:"column:date_of_birth;type:date" json:"date_of_birth"`
	Gender        Gender    `gorm:"column:gender;type:varchar(20)" json:"gender"`
	BloodType     string    `gorm:"column:blood_type;type:varchar(5)" json:"blood_type"`

	Phone   string `gorm:"column:phone;type:varchar(20)" json:"phone"`
	Email   string `gorm:"column:email;type:varchar(255)" json:"email"`
	Address string `gorm:"column:address;type:text" json:"address"`

	EmergencyContactName  string `gorm:"column:emergency_contact_name;type:varchar(200)" json:"emergency_contact_name"`
	EmergencyContactPhone string `gorm:"column:emergency_contact_phone;type:varchar(20)" json:"emergency_contact_phone"`

	InsuranceProvider     string `gorm:"column:insurance_provider;type:varchar(200)" json:"insurance_provider"`
	InsurancePolicyNumber string `gorm:"column:insurance_policy_number;type:varchar(100)" json:"insurance_policy_number"`

	Allergies string `gorm:"column:allergies;type:text" json:"allergies"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// WithDiagnosis is the list-view projection: the patient row joined with the
// diagnosis of their most recent medical record.
type WithDiagnosis struct {
	Patient
	LatestDiagnosis string `gorm:"column:latest_diagnosis" json:"latest_diagnosis"`
}

type CreateCommand struct {
	PatientNumber         string
	FirstName             string
	LastName              string
	DateOfBirth           time.Time
	Gender                Gender
	BloodType             string
	Phone                 string
	Email                 string
	Address               string
	EmergencyContactName  string
	EmergencyContactPhone string
	InsuranceProvider     string
	InsurancePolicyNumber string
	Allergies             string
}

// UpdateCommand covers the mutable contact and insurance fields; identity
// fields (name, date of birth, patient number) are fixed after registration.
type UpdateCommand struct {
	Phone                 *string
	Email                 *string
	Address               *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	InsuranceProvider     *string
	InsurancePolicyNumber *string
	Allergies             *string
}
