package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careops/hms-api/internal/domain/department"
)

type DepartmentRepo struct {
	db *gorm.DB
}

func NewDepartmentRepo(db *gorm.DB) *DepartmentRepo {
	return &DepartmentRepo{db: db}
}

func (r *DepartmentRepo) Create(ctx context.Context, d *department.Department) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return department.ErrDepartmentAlreadyExists
	}
	return err
}

func (r *DepartmentRepo) List(ctx context.Context) ([]*department.Department, error) {
	var rows []*department.Department
	err := r.db.WithContext(ctx).Order("department_name").Find(&rows).Error
	return rows, err
}

func (r *DepartmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&department.Department{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}
