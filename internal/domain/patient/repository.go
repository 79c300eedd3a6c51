package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient. Returns ErrPatientAlreadyExists on a
	// duplicate patient number.
	Create(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// List returns every patient with their latest diagnosis joined in.
	List(ctx context.Context) ([]*WithDiagnosis, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateCommand) (*Patient, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByDoctor returns the distinct patients a doctor has appointments with.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Patient, error)

	Count(ctx context.Context) (int64, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *Attachment) error

	// GetByID returns ErrAttachmentNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Attachment, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
