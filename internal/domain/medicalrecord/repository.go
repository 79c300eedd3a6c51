package medicalrecord

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error

	// List returns every record joined with patient and doctor names,
	// newest visit first.
	List(ctx context.Context) ([]*WithNames, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*WithNames, error)

	// Delete returns ErrRecordNotFound when no row matches.
	Delete(ctx context.Context, id uuid.UUID) error
}
