package upload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/solohsu29/gondola-manager/internal/entity"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Project{},
		&entity.Gondola{},
		&entity.Document{},
		&entity.Photo{},
		&entity.CertificateExpiry{},
	))
	return NewEngine(db, zap.NewNop()), db
}

func createGondola(t *testing.T, db *gorm.DB, serial string) entity.Gondola {
	t.Helper()
	g := entity.Gondola{SerialNumber: serial, Status: entity.GondolaStatusDeployed}
	require.NoError(t, db.Create(&g).Error)
	return g
}

func createProject(t *testing.T, db *gorm.DB) entity.Project {
	t.Helper()
	p := entity.Project{ClientName: "Acme Corp", SiteName: "Sky Tower", StartDate: time.Now(), Status: entity.ProjectStatusActive}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestStage_NoPersistence(t *testing.T) {
	e, db := newTestEngine(t)

	sf := e.Stage(File{Name: "ra.pdf", MimeType: "application/pdf", Content: []byte("pdf")})
	assert.True(t, IsPreviewID(sf.PreviewID))

	var count int64
	require.NoError(t, db.Model(&entity.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommitDocument_ToGondola(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1001")

	doc, err := e.CommitDocument(context.Background(), File{
		Name:     "swp.pdf",
		MimeType: "application/pdf",
		Content:  []byte("procedure"),
	}, Target{GondolaID: &g.ID})
	require.NoError(t, err)

	assert.Equal(t, entity.DocumentTypeAdhoc, doc.Type)
	assert.Equal(t, entity.DocStatusValid, doc.Status)
	assert.Nil(t, doc.ExpiryDate)
	assert.Equal(t, DocumentDownloadURL(doc.ID), doc.FileURL)

	var stored entity.Document
	require.NoError(t, db.First(&stored, "id = ?", doc.ID).Error)
	assert.Equal(t, []byte("procedure"), stored.Content)
	require.NotNil(t, stored.GondolaID)
	assert.Equal(t, g.ID, *stored.GondolaID)
	assert.Nil(t, stored.ProjectID)

	// An ad-hoc upload never creates a certificate entry.
	var certCount int64
	require.NoError(t, db.Model(&entity.CertificateExpiry{}).Count(&certCount).Error)
	assert.Zero(t, certCount)
}

func TestCommitDocument_Orphan(t *testing.T) {
	e, db := newTestEngine(t)

	doc, err := e.CommitDocument(context.Background(), File{
		Name:    "early.pdf",
		Content: []byte("x"),
	}, Target{})
	require.NoError(t, err)

	var stored entity.Document
	require.NoError(t, db.First(&stored, "id = ?", doc.ID).Error)
	assert.Nil(t, stored.ProjectID)
	assert.Nil(t, stored.GondolaID)
}

func TestCommitDocument_Validation(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1002")
	p := createProject(t, db)

	_, err := e.CommitDocument(context.Background(), File{Name: "empty.pdf"}, Target{})
	assert.True(t, IsValidation(err))

	_, err = e.CommitDocument(context.Background(), File{Name: "a.pdf", Content: []byte("x")},
		Target{ProjectID: &p.ID, GondolaID: &g.ID})
	assert.True(t, IsValidation(err))

	missing := uuid.New()
	_, err = e.CommitDocument(context.Background(), File{Name: "a.pdf", Content: []byte("x")},
		Target{ProjectID: &missing})
	assert.True(t, IsValidation(err))
}

func TestCommitPhoto_RejectsNonImage(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1003")

	_, err := e.CommitPhoto(context.Background(), File{
		Name:     "notes.txt",
		MimeType: "text/plain",
		Content:  []byte("hello"),
	}, g.ID, "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "not a valid image")

	var count int64
	require.NoError(t, db.Model(&entity.Photo{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommitPhoto_RoundTrip(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1004")

	photo, err := e.CommitPhoto(context.Background(), File{
		Name:     "front.jpg",
		MimeType: "image/jpeg",
		Content:  []byte{0xFF, 0xD8, 0xFF, 0xE0},
	}, g.ID, "front elevation")
	require.NoError(t, err)

	assert.Equal(t, PhotoDownloadURL(photo.ID), photo.URL)
	assert.Equal(t, "image/jpeg", photo.MimeType)

	var stored entity.Photo
	require.NoError(t, db.First(&stored, "id = ?", photo.ID).Error)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xE0}, stored.Content)
	assert.Equal(t, "front elevation", stored.Description)
}

func TestCommitPhoto_UnknownGondola(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.CommitPhoto(context.Background(), File{
		Name:     "x.png",
		MimeType: "image/png",
		Content:  []byte("png"),
	}, uuid.New(), "")
	assert.True(t, IsValidation(err))
}

func TestCommitAllStaged_PartialFailure(t *testing.T) {
	e, db := newTestEngine(t)
	p := createProject(t, db)

	staged := []StagedFile{
		e.Stage(File{Name: "one.pdf", Content: []byte("1")}),
		e.Stage(File{Name: "broken.pdf"}), // no content, fails validation
		e.Stage(File{Name: "three.pdf", Content: []byte("3")}),
	}

	docs, err := e.CommitAllStaged(context.Background(), staged, Target{ProjectID: &p.ID})
	require.Error(t, err)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, []string{"broken.pdf"}, batchErr.Failed)

	// The two successes stay persisted and attached.
	require.Len(t, docs, 2)
	var count int64
	require.NoError(t, db.Model(&entity.Document{}).Where("project_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCommitAllStaged_AllSucceed(t *testing.T) {
	e, db := newTestEngine(t)
	p := createProject(t, db)

	staged := []StagedFile{
		e.Stage(File{Name: "do.pdf", Content: []byte("do")}),
		e.Stage(File{Name: "ra.pdf", Content: []byte("ra")}),
	}

	docs, err := e.CommitAllStaged(context.Background(), staged, Target{ProjectID: &p.ID})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	for _, doc := range docs {
		require.NotNil(t, doc.ProjectID)
		assert.Equal(t, p.ID, *doc.ProjectID)
	}
}

func TestCommitAllStaged_Cancelled(t *testing.T) {
	e, db := newTestEngine(t)
	p := createProject(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs, err := e.CommitAllStaged(ctx, []StagedFile{
		e.Stage(File{Name: "one.pdf", Content: []byte("1")}),
	}, Target{ProjectID: &p.ID})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, docs)

	var count int64
	require.NoError(t, db.Model(&entity.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteAttachment_PreviewIsLocalNoop(t *testing.T) {
	e, db := newTestEngine(t)

	sf := e.Stage(File{Name: "ghost.pdf", Content: []byte("x")})
	require.NoError(t, e.DeleteAttachment(context.Background(), sf.PreviewID))

	// Nothing was ever persisted, and nothing was deleted.
	var count int64
	require.NoError(t, db.Model(&entity.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteAttachment_Persisted(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1005")

	doc, err := e.CommitDocument(context.Background(), File{Name: "x.pdf", Content: []byte("x")},
		Target{GondolaID: &g.ID})
	require.NoError(t, err)

	require.NoError(t, e.DeleteAttachment(context.Background(), doc.ID.String()))

	var count int64
	require.NoError(t, db.Model(&entity.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReattach(t *testing.T) {
	e, db := newTestEngine(t)
	p := createProject(t, db)

	orphan, err := e.CommitDocument(context.Background(), File{Name: "late.pdf", Content: []byte("x")}, Target{})
	require.NoError(t, err)

	doc, err := e.Reattach(context.Background(), orphan.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.ProjectID)
	assert.Equal(t, p.ID, *doc.ProjectID)

	// Already attached now, so a second reattach is rejected.
	_, err = e.Reattach(context.Background(), orphan.ID, p.ID)
	assert.True(t, IsValidation(err))
}

func TestCommitCertificate(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1006")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	doc, cert, err := e.CommitCertificate(context.Background(), File{
		Name:     "mom.pdf",
		MimeType: "application/pdf",
		Content:  []byte("cert"),
	}, g.ID, entity.DocumentTypeMOMCert, now.AddDate(0, 0, 10))
	require.NoError(t, err)

	assert.Equal(t, entity.DocStatusExpiring, doc.Status)
	require.NotNil(t, doc.ExpiryDate)

	assert.Equal(t, doc.ID, cert.DocumentID)
	assert.Equal(t, "GND-1006", cert.SerialNumber)
	assert.Equal(t, 10, cert.DaysRemaining)
	assert.Equal(t, entity.DocStatusExpiring, cert.Status)

	var storedCert entity.CertificateExpiry
	require.NoError(t, db.First(&storedCert, "document_id = ?", doc.ID).Error)
	assert.Equal(t, entity.DocStatusExpiring, storedCert.Status)
}

func TestDeleteAttachment_RemovesCertificateEntry(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1007")

	doc, _, err := e.CommitCertificate(context.Background(), File{
		Name:    "lew.pdf",
		Content: []byte("cert"),
	}, g.ID, entity.DocumentTypeLEW, time.Now().AddDate(1, 0, 0))
	require.NoError(t, err)

	require.NoError(t, e.DeleteAttachment(context.Background(), doc.ID.String()))

	var docCount, certCount int64
	require.NoError(t, db.Model(&entity.Document{}).Count(&docCount).Error)
	require.NoError(t, db.Model(&entity.CertificateExpiry{}).Count(&certCount).Error)
	assert.Zero(t, docCount)
	assert.Zero(t, certCount)
}

func TestDeletePhoto_PreviewIsLocalNoop(t *testing.T) {
	e, db := newTestEngine(t)

	sf := e.Stage(File{Name: "ghost.png", MimeType: "image/png", Content: []byte("x")})
	require.NoError(t, e.DeletePhoto(context.Background(), sf.PreviewID))

	var count int64
	require.NoError(t, db.Model(&entity.Photo{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeletePhoto_Persisted(t *testing.T) {
	e, db := newTestEngine(t)
	g := createGondola(t, db, "GND-1008")

	photo, err := e.CommitPhoto(context.Background(), File{
		Name:     "hoist.png",
		MimeType: "image/png",
		Content:  []byte{0x89, 'P', 'N', 'G'},
	}, g.ID, "")
	require.NoError(t, err)

	require.NoError(t, e.DeletePhoto(context.Background(), photo.ID.String()))

	var count int64
	require.NoError(t, db.Model(&entity.Photo{}).Count(&count).Error)
	assert.Zero(t, count)
}
