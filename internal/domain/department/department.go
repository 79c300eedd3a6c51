package department

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string     `gorm:"column:department_name;type:varchar(150);uniqueIndex;not null" json:"department_name"`
	HeadDoctorID *uuid.UUID `gorm:"column:head_doctor_id;type:uuid" json:"head_doctor_id,omitempty"`
	Location     string     `gorm:"column:location;type:varchar(200)" json:"location"`
	Phone        string     `gorm:"column:phone;type:varchar(20)" json:"phone"`
}

func (Department) TableName() string {
	return "departments"
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
