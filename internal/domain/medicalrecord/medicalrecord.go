package medicalrecord

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicalRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor_id"`

	VisitDate time.Time `gorm:"column:visit_date;type:date;not null;index" json:"visit_date"`

	Diagnosis    string `gorm:"column:diagnosis;type:text" json:"diagnosis"`
	Treatment    string `gorm:"column:treatment;type:text" json:"treatment"`
	Prescription string `gorm:"column:prescription;type:text" json:"prescription"`
	LabResults   string `gorm:"column:lab_results;type:text" json:"lab_results"`
	Notes        string `gorm:"column:notes;type:text" json:"notes"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"-"`
}

func (MedicalRecord) TableName() string {
	return "medical_records"
}

func (r *MedicalRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// WithNames is the list-view projection joining patient and doctor names.
type WithNames struct {
	MedicalRecord
	PatientFirstName string `gorm:"column:patient_first_name" json:"patient_first_name"`
	PatientLastName  string `gorm:"column:patient_last_name" json:"patient_last_name"`
	DoctorFirstName  string `gorm:"column:doctor_first_name" json:"doctor_first_name"`
	DoctorLastName   string `gorm:"column:doctor_last_name" json:"doctor_last_name"`
}

type CreateCommand struct {
	PatientID    uuid.UUID
	DoctorID     uuid.UUID
	VisitDate    time.Time
	Diagnosis    string
	Treatment    string
	Prescription string
	LabResults   string
	Notes        string
	CreatedBy    uuid.UUID
}
