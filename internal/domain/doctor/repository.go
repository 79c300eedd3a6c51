package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new doctor. Returns ErrDoctorAlreadyExists on a
	// duplicate employee ID.
	Create(ctx context.Context, d *Doctor) error

	// GetByID returns ErrDoctorNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	List(ctx context.Context) ([]*Doctor, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateCommand) (*Doctor, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByPatient returns the distinct doctors a patient has appointments with.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Doctor, error)

	Count(ctx context.Context) (int64, error)
}
