package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/patient"
	"github.com/careops/hms-api/pkg/metrics"
	"github.com/careops/hms-api/pkg/storage"
)

type AttachmentService struct {
	attachments patient.AttachmentRepository
	patients    patient.Repository
	blobs       storage.BlobStore
	maxBytes    int64
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewAttachmentService(
	attachments patient.AttachmentRepository,
	patients patient.Repository,
	blobs storage.BlobStore,
	maxBytes int64,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		patients:    patients,
		blobs:       blobs,
		maxBytes:    maxBytes,
		auditSvc:    auditSvc,
		metrics:     m,
		log:         log,
	}
}

// Upload streams the file into blob storage and records the metadata row.
// The blob key is derived from a fresh id, never the client file name.
func (s *AttachmentService) Upload(ctx context.Context, patientID uuid.UUID, fileName, contentType string, r io.Reader, caller *domain.Claims, ip string) (*patient.Attachment, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != patientID {
			return nil, ErrForbidden
		}
	}
	if fileName == "" {
		return nil, &ValidationError{Fields: []string{"file name is required"}}
	}

	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	id := uuid.New()
	key := fmt.Sprintf("%s/%s%s", patientID, id, filepath.Ext(fileName))

	limited := io.LimitReader(r, s.maxBytes+1)
	size, err := s.blobs.Save(ctx, key, limited)
	if err != nil {
		return nil, fmt.Errorf("storing attachment: %w", err)
	}
	if size > s.maxBytes {
		_ = s.blobs.Delete(ctx, key)
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes)}}
	}

	a := &patient.Attachment{
		ID:          id,
		PatientID:   patientID,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		SizeBytes:   size,
		StorageKey:  key,
		UploadedBy:  caller.UserID,
	}
	if err := s.attachments.Create(ctx, a); err != nil {
		_ = s.blobs.Delete(ctx, key)
		return nil, err
	}

	s.metrics.AttachmentsUploaded.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "create",
		ResourceType: "attachment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})
	return a, nil
}

func (s *AttachmentService) ListByPatient(ctx context.Context, patientID uuid.UUID, caller *domain.Claims) ([]*patient.Attachment, error) {
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != patientID {
			return nil, ErrForbidden
		}
	}
	return s.attachments.ListByPatient(ctx, patientID)
}

// Download returns the metadata row and an open reader over the blob. The
// caller owns closing the reader.
func (s *AttachmentService) Download(ctx context.Context, id uuid.UUID, caller *domain.Claims) (*patient.Attachment, io.ReadCloser, error) {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != a.PatientID {
			return nil, nil, ErrForbidden
		}
	}
	rc, err := s.blobs.Open(ctx, a.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("opening attachment blob: %w", err)
	}
	return a, rc, nil
}

func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) error {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, a.StorageKey); err != nil {
		// Metadata is gone; an orphaned blob is recoverable by a sweep.
		s.log.Warn("failed to delete attachment blob",
			zap.String("storage_key", a.StorageKey),
			zap.Error(err),
		)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     string(caller.Role),
		Action:       "delete",
		ResourceType: "attachment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}
