package department

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create returns ErrDepartmentAlreadyExists on a duplicate name.
	Create(ctx context.Context, d *Department) error

	List(ctx context.Context) ([]*Department, error)

	// Delete returns ErrDepartmentNotFound when no row matches.
	Delete(ctx context.Context, id uuid.UUID) error
}
