package upload

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/expiry"
)

// PreviewIDPrefix marks client-only ghost records that were staged but never
// committed. Deletes for such ids must never reach the record store.
const PreviewIDPrefix = "preview-"

// File is a user-selected file ready for commit.
type File struct {
	Name     string
	MimeType string
	Content  []byte
}

// StagedFile is a file held in memory pending its parent entity's creation.
// PreviewID is a local display handle, not a persisted id.
type StagedFile struct {
	File
	PreviewID string
}

// Target names the record a commit attaches to. For documents exactly one of
// the two may be set, or neither to create an orphan pending reattach.
type Target struct {
	ProjectID *uuid.UUID
	GondolaID *uuid.UUID
}

// Engine turns selected files into persisted document and photo records.
// Binary content lives in the record row itself, so a single create is the
// whole logical unit: there is no orphaned-blob window to clean up.
type Engine struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(db *gorm.DB, logger *zap.Logger) *Engine {
	return &Engine{db: db, logger: logger, now: time.Now}
}

// Stage accepts a file unconditionally and holds it client-side only. No
// network I/O happens until commit.
func (e *Engine) Stage(file File) StagedFile {
	return StagedFile{File: file, PreviewID: PreviewIDPrefix + uuid.NewString()}
}

// IsPreviewID reports whether id refers to a staged ghost record that was
// never persisted.
func IsPreviewID(id string) bool {
	return strings.HasPrefix(id, PreviewIDPrefix)
}

// DocumentDownloadURL is the stable reference stored in fileUrl.
func DocumentDownloadURL(id uuid.UUID) string {
	return "/api/v1/documents/" + id.String() + "/download"
}

// PhotoDownloadURL is the stable reference stored in a photo's url.
func PhotoDownloadURL(id uuid.UUID) string {
	return "/api/v1/photos/" + id.String() + "/download"
}

// CommitDocument persists a document upload. The target may name a project
// or a gondola but not both; with neither the document is created orphaned
// and can be attached later via Reattach. Ad-hoc uploads carry no expiry
// date and therefore create no certificate entry.
func (e *Engine) CommitDocument(ctx context.Context, file File, target Target) (*entity.Document, error) {
	if len(file.Content) == 0 {
		return nil, validationErrorf("missing file")
	}
	if target.ProjectID != nil && target.GondolaID != nil {
		return nil, validationErrorf("document may belong to a project or a gondola, not both")
	}
	if err := e.checkTarget(ctx, target); err != nil {
		return nil, err
	}

	// Minting the id up front lets the download url land in the same write
	// as the content, keeping the record and its binary a single unit.
	id := uuid.New()
	doc := entity.Document{
		ID:         id,
		Type:       entity.DocumentTypeAdhoc,
		Name:       file.Name,
		UploadedAt: e.now(),
		FileURL:    DocumentDownloadURL(id),
		Status:     entity.DocStatusValid,
		GondolaID:  target.GondolaID,
		ProjectID:  target.ProjectID,
		Content:    file.Content,
	}
	if err := e.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, &RecordStoreError{Op: "create document", Err: err}
	}

	e.logger.Info("Document uploaded",
		zap.String("documentId", doc.ID.String()), zap.String("name", doc.Name))
	return &doc, nil
}

// CommitPhoto persists a photo upload onto an existing gondola. Only image
// content types are accepted.
func (e *Engine) CommitPhoto(ctx context.Context, file File, gondolaID uuid.UUID, description string) (*entity.Photo, error) {
	if len(file.Content) == 0 {
		return nil, validationErrorf("missing file")
	}
	if !strings.HasPrefix(file.MimeType, "image/") {
		return nil, validationErrorf("%q is not a valid image", file.Name)
	}

	var gondola entity.Gondola
	if err := e.db.WithContext(ctx).First(&gondola, "id = ?", gondolaID).Error; err != nil {
		return nil, validationErrorf("invalid gondolaId %s", gondolaID)
	}

	id := uuid.New()
	photo := entity.Photo{
		ID:          id,
		URL:         PhotoDownloadURL(id),
		UploadedAt:  e.now(),
		Description: description,
		MimeType:    file.MimeType,
		GondolaID:   gondolaID,
		Content:     file.Content,
	}
	if err := e.db.WithContext(ctx).Create(&photo).Error; err != nil {
		return nil, &RecordStoreError{Op: "create photo", Err: err}
	}

	e.logger.Info("Photo uploaded",
		zap.String("photoId", photo.ID.String()), zap.String("gondolaId", gondolaID.String()))
	return &photo, nil
}

// CommitAllStaged uploads staged files sequentially against a target whose
// id has just become known. A failure on one file does not abort the rest:
// the successes are returned alongside a single aggregate error naming each
// failed file. The caller must discard the staged set afterwards so nothing
// is re-uploaded on later saves.
func (e *Engine) CommitAllStaged(ctx context.Context, staged []StagedFile, target Target) ([]*entity.Document, error) {
	docs := []*entity.Document{}
	var failed []string
	var errs error

	for _, sf := range staged {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		doc, err := e.CommitDocument(ctx, sf.File, target)
		if err != nil {
			failed = append(failed, sf.Name)
			errs = multierr.Append(errs, err)
			e.logger.Warn("Staged file failed to upload",
				zap.String("name", sf.Name), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	if errs != nil {
		return docs, &BatchError{Failed: failed, Err: errs}
	}
	return docs, nil
}

// CommitCertificate persists a structured certificate document together with
// its materialized expiry entry in one transaction.
func (e *Engine) CommitCertificate(ctx context.Context, file File, gondolaID uuid.UUID, docType string, expiryDate time.Time) (*entity.Document, *entity.CertificateExpiry, error) {
	if len(file.Content) == 0 {
		return nil, nil, validationErrorf("missing file")
	}

	var gondola entity.Gondola
	if err := e.db.WithContext(ctx).First(&gondola, "id = ?", gondolaID).Error; err != nil {
		return nil, nil, validationErrorf("invalid gondolaId %s", gondolaID)
	}

	now := e.now()
	status, days := expiry.Classify(expiryDate, now)

	id := uuid.New()
	doc := entity.Document{
		ID:         id,
		Type:       docType,
		Name:       file.Name,
		UploadedAt: now,
		ExpiryDate: &expiryDate,
		FileURL:    DocumentDownloadURL(id),
		Status:     status,
		GondolaID:  &gondola.ID,
		Content:    file.Content,
	}
	cert := entity.CertificateExpiry{
		DocumentID:    id,
		GondolaID:     gondola.ID,
		SerialNumber:  gondola.SerialNumber,
		DocumentType:  docType,
		ExpiryDate:    expiryDate,
		DaysRemaining: days,
		Status:        status,
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		return tx.Create(&cert).Error
	})
	if err != nil {
		return nil, nil, &RecordStoreError{Op: "create certificate", Err: err}
	}

	e.logger.Info("Certificate uploaded",
		zap.String("documentId", doc.ID.String()),
		zap.String("serialNumber", gondola.SerialNumber),
		zap.String("status", status))
	return &doc, &cert, nil
}

// DeleteAttachment removes a persisted document and its content. Preview ids
// identify ghost records that were never persisted; for those no delete is
// issued against the record store and the call succeeds as a local no-op.
func (e *Engine) DeleteAttachment(ctx context.Context, id string) error {
	if IsPreviewID(id) {
		e.logger.Debug("Skipping delete for preview-only attachment", zap.String("id", id))
		return nil
	}

	docID, err := uuid.Parse(id)
	if err != nil {
		return validationErrorf("invalid document id %q", id)
	}
	// Certificate documents carry a materialized expiry entry; it dies with
	// the document so the listing never shows entries for deleted files.
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.CertificateExpiry{}, "document_id = ?", docID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Document{}, "id = ?", docID).Error
	})
	if err != nil {
		return &RecordStoreError{Op: "delete document", Err: err}
	}
	return nil
}

// DeletePhoto removes a persisted photo and its content. Preview ids get the
// same local no-op treatment as document previews.
func (e *Engine) DeletePhoto(ctx context.Context, id string) error {
	if IsPreviewID(id) {
		e.logger.Debug("Skipping delete for preview-only attachment", zap.String("id", id))
		return nil
	}

	photoID, err := uuid.Parse(id)
	if err != nil {
		return validationErrorf("invalid photo id %q", id)
	}
	if err := e.db.WithContext(ctx).Delete(&entity.Photo{}, "id = ?", photoID).Error; err != nil {
		return &RecordStoreError{Op: "delete photo", Err: err}
	}
	return nil
}

// Reattach moves an orphaned document (no project, no gondola) onto a
// project, for flows where the upload landed before its parent existed.
func (e *Engine) Reattach(ctx context.Context, documentID, projectID uuid.UUID) (*entity.Document, error) {
	var doc entity.Document
	if err := e.db.WithContext(ctx).Select(entity.DocumentListColumns).
		First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, validationErrorf("document %s not found", documentID)
	}
	if doc.ProjectID != nil || doc.GondolaID != nil {
		return nil, validationErrorf("document %s is already attached", documentID)
	}

	var project entity.Project
	if err := e.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		return nil, validationErrorf("project %s not found", projectID)
	}

	if err := e.db.WithContext(ctx).Model(&entity.Document{}).
		Where("id = ?", documentID).
		Update("project_id", projectID).Error; err != nil {
		return nil, &RecordStoreError{Op: "reattach document", Err: err}
	}
	doc.ProjectID = &projectID
	return &doc, nil
}

func (e *Engine) checkTarget(ctx context.Context, target Target) error {
	if target.ProjectID != nil {
		var project entity.Project
		if err := e.db.WithContext(ctx).First(&project, "id = ?", *target.ProjectID).Error; err != nil {
			return validationErrorf("invalid projectId %s", *target.ProjectID)
		}
	}
	if target.GondolaID != nil {
		var gondola entity.Gondola
		if err := e.db.WithContext(ctx).First(&gondola, "id = ?", *target.GondolaID).Error; err != nil {
			return validationErrorf("invalid gondolaId %s", *target.GondolaID)
		}
	}
	return nil
}
