package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/department"
)

type DepartmentService struct {
	repo     department.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDepartmentService(repo department.Repository, auditSvc *AuditService, log *zap.Logger) *DepartmentService {
	return &DepartmentService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *DepartmentService) Create(ctx context.Context, d *department.Department, caller *domain.Claims, ip string) error {
	if d.Name == "" {
		return &ValidationError{Fields: []string{"department_name is required"}}
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "department",
		ResourceID:   d.ID.String(),
		IPAddress:    ip,
	})
	return nil
}

func (s *DepartmentService) List(ctx context.Context) ([]*department.Department, error) {
	return s.repo.List(ctx)
}

func (s *DepartmentService) Delete(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "department",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}
