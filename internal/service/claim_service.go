package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/storage"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/metrics"
)

// FileUpload is one incoming attachment for a claim file slot.
type FileUpload struct {
	Field       claim.FileField
	FileName    string
	ContentType string
	Content     io.Reader
}

type ClaimService struct {
	repo     claim.Repository
	blobs    storage.BlobStore
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewClaimService(repo claim.Repository, blobs storage.BlobStore, auditSvc *AuditService, collector *metrics.Collector, log *zap.Logger) *ClaimService {
	return &ClaimService{
		repo:     repo,
		blobs:    blobs,
		auditSvc: auditSvc,
		metrics:  collector,
		log:      log,
	}
}

func (s *ClaimService) ListClaims(ctx context.Context, ident domain.Identity, q *claim.ListClaimsQuery) (*claim.PagedClaims, error) {
	if !ident.Role.Can(domain.OpClaimRead) {
		return nil, ErrForbidden
	}
	if !claim.ValidOrderBy(q.OrderBy) {
		return nil, claim.ErrInvalidOrderField
	}
	if q.PageSize <= 0 || q.PageSize > 200 {
		q.PageSize = 50
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *ClaimService) GetClaim(ctx context.Context, ident domain.Identity, id uint) (*claim.Claim, error) {
	if !ident.Role.Can(domain.OpClaimRead) {
		return nil, ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

// CreateClaim validates and derives a new claim and persists it together
// with any uploaded attachments. Blobs are written before the insert so a
// duplicate claim ID leaves no dangling references; on insert failure the
// stored blobs are removed best-effort.
func (s *ClaimService) CreateClaim(ctx context.Context, ident domain.Identity, cmd *claim.CreateClaimCommand, files []FileUpload, ip string) (*claim.Claim, error) {
	if !ident.Role.Can(domain.OpClaimWrite) {
		return nil, ErrForbidden
	}

	c, err := claim.NewClaim(cmd)
	if err != nil {
		return nil, err
	}

	var storedKeys []string
	for _, f := range files {
		ref, err := s.storeFile(ctx, c.ClaimID, f)
		if err != nil {
			s.removeBlobs(ctx, storedKeys)
			return nil, err
		}
		storedKeys = append(storedKeys, ref.Key)
		c.SetFileRef(f.Field, ref)
		c.SetFileUploaded(f.Field, true)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.removeBlobs(ctx, storedKeys)
		return nil, err
	}

	s.metrics.ClaimsCreatedTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionCreate),
		ResourceType: "claim",
		ResourceID:   c.ClaimID,
		IPAddress:    ip,
	})

	s.log.Info("claim created",
		zap.Uint("id", c.ID),
		zap.String("claim_id", c.ClaimID),
		zap.String("created_by", ident.UserID.String()),
	)

	return c, nil
}

// UpdateClaim applies a partial update. Month and difference amount are
// recomputed no matter which fields changed. Slot deletions clear the
// stored reference first; the underlying blob removal is best-effort and
// never fails the mutation.
func (s *ClaimService) UpdateClaim(ctx context.Context, ident domain.Identity, id uint, cmd *claim.UpdateClaimCommand, files []FileUpload, deletions []claim.FileField, ip string) (*claim.Claim, error) {
	if !ident.Role.Can(domain.OpClaimWrite) {
		return nil, ErrForbidden
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.ApplyUpdate(cmd); err != nil {
		return nil, err
	}

	var obsoleteKeys []string
	for _, field := range deletions {
		if ref := c.FileRefFor(field); ref != nil {
			obsoleteKeys = append(obsoleteKeys, ref.Key)
		}
		c.SetFileRef(field, nil)
	}

	for _, f := range files {
		old := c.FileRefFor(f.Field)
		ref, err := s.storeFile(ctx, c.ClaimID, f)
		if err != nil {
			return nil, err
		}
		// Keys are deterministic, so re-uploading the same filename lands
		// on the old key. The new blob already overwrote it; removing the
		// key now would delete the file the fresh ref points at.
		if old != nil && old.Key != ref.Key {
			obsoleteKeys = append(obsoleteKeys, old.Key)
		}
		c.SetFileRef(f.Field, ref)
		c.SetFileUploaded(f.Field, true)
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.removeBlobs(ctx, obsoleteKeys)

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionUpdate),
		ResourceType: "claim",
		ResourceID:   c.ClaimID,
		IPAddress:    ip,
	})

	return c, nil
}

// DeleteClaim removes the record, then clears its attachments from blob
// storage. Cleanup failures are logged and counted, never surfaced.
func (s *ClaimService) DeleteClaim(ctx context.Context, ident domain.Identity, id uint, ip string) error {
	if !ident.Role.Can(domain.OpClaimWrite) {
		return ErrForbidden
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	var keys []string
	for _, field := range claim.AllFileFields {
		if ref := c.FileRefFor(field); ref != nil {
			keys = append(keys, ref.Key)
		}
	}
	s.removeBlobs(ctx, keys)

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionDelete),
		ResourceType: "claim",
		ResourceID:   c.ClaimID,
		IPAddress:    ip,
	})

	s.log.Info("claim deleted",
		zap.Uint("id", id),
		zap.String("claim_id", c.ClaimID),
		zap.String("deleted_by", ident.UserID.String()),
	)

	return nil
}

// DeleteClaimFile clears one file slot. The database clearing always
// succeeds independently of the physical blob cleanup outcome.
func (s *ClaimService) DeleteClaimFile(ctx context.Context, ident domain.Identity, id uint, field claim.FileField, ip string) (*claim.Claim, error) {
	if !ident.Role.Can(domain.OpClaimWrite) {
		return nil, ErrForbidden
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ref := c.FileRefFor(field)
	if ref == nil {
		return nil, claim.ErrFileNotAttached
	}

	c.SetFileRef(field, nil)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.removeBlobs(ctx, []string{ref.Key})

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionUpdate),
		ResourceType: "claim",
		ResourceID:   c.ClaimID,
		IPAddress:    ip,
	})

	return c, nil
}

// SetFileStatus flips the upload-status flag for one slot without touching
// the stored reference; the two are tracked independently.
func (s *ClaimService) SetFileStatus(ctx context.Context, ident domain.Identity, id uint, field claim.FileField, uploaded bool, ip string) (*claim.Claim, error) {
	if !ident.Role.Can(domain.OpClaimWrite) {
		return nil, ErrForbidden
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.SetFileUploaded(field, uploaded)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionUpdate),
		ResourceType: "claim",
		ResourceID:   c.ClaimID,
		IPAddress:    ip,
	})

	return c, nil
}

func (s *ClaimService) storeFile(ctx context.Context, claimID string, f FileUpload) (*claim.FileRef, error) {
	key := storage.ClaimFileKey(claimID, string(f.Field), f.FileName)
	size, err := s.blobs.Save(ctx, key, f.Content)
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", f.Field, err)
	}
	return &claim.FileRef{
		Key:         key,
		FileName:    f.FileName,
		ContentType: f.ContentType,
		SizeBytes:   size,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (s *ClaimService) removeBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.blobs.Remove(ctx, key); err != nil {
			s.metrics.BlobCleanupFailures.Inc()
			s.log.Warn("failed to remove blob",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
