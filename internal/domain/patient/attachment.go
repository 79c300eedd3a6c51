package patient

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is a file uploaded against a patient record (lab PDF, scan,
// referral letter). The blob lives in the storage backend under StorageKey;
// this row carries only metadata.
type Attachment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	PatientID   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	FileName    string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	ContentType string    `gorm:"column:content_type;type:varchar(100)" json:"content_type"`
	SizeBytes   int64     `gorm:"column:size_bytes" json:"size_bytes"`
	StorageKey  string    `gorm:"column:storage_key;type:varchar(255);not null" json:"-"`

	UploadedBy uuid.UUID `gorm:"column:uploaded_by;type:uuid" json:"-"`
}

func (Attachment) TableName() string {
	return "patient_attachments"
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
