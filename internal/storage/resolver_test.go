package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solohsu29/gondola-manager/internal/entity"
)

func TestResolveDocument_FromContent(t *testing.T) {
	t.Parallel()

	r := NewResolver("")
	doc := &entity.Document{
		ID:      uuid.New(),
		Name:    "cert.pdf",
		Content: []byte("%PDF-1.4"),
	}

	content, mime, disposition, err := r.ResolveDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), content)
	assert.Equal(t, "application/pdf", mime)
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "cert.pdf")
}

func TestResolveDocument_UnknownExtension(t *testing.T) {
	t.Parallel()

	r := NewResolver("")
	doc := &entity.Document{ID: uuid.New(), Name: "blob.bin", Content: []byte("x")}

	_, mime, _, err := r.ResolveDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mime)
}

func TestResolveDocument_LegacyDiskFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.pdf"), []byte("old bytes"), 0o644))

	r := NewResolver(dir)
	doc := &entity.Document{
		ID:      uuid.New(),
		Name:    "legacy.pdf",
		FileURL: "/uploads/legacy.pdf",
	}

	content, mime, _, err := r.ResolveDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []byte("old bytes"), content)
	assert.Equal(t, "application/pdf", mime)
}

func TestResolveDocument_NoContentAnywhere(t *testing.T) {
	t.Parallel()

	r := NewResolver(t.TempDir())
	doc := &entity.Document{ID: uuid.New(), Name: "gone.pdf", FileURL: "/uploads/gone.pdf"}

	_, _, _, err := r.ResolveDocument(doc)
	assert.Error(t, err)
}

func TestResolvePhoto_StoredMimeWins(t *testing.T) {
	t.Parallel()

	r := NewResolver("")
	photo := &entity.Photo{
		ID:       uuid.New(),
		URL:      "/api/v1/photos/x/download",
		MimeType: "image/png",
		Content:  []byte("png bytes"),
	}

	content, mime, disposition, err := r.ResolvePhoto(photo)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), content)
	assert.Equal(t, "image/png", mime)
	assert.Contains(t, disposition, "inline")
}

func TestResolvePhoto_DefaultsToJpeg(t *testing.T) {
	t.Parallel()

	r := NewResolver("")
	photo := &entity.Photo{ID: uuid.New(), URL: "/uploads/pic", Content: []byte("x")}

	_, mime, _, err := r.ResolvePhoto(photo)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
}

func TestDocumentMimeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/pdf", DocumentMimeType("a.PDF"))
	assert.Equal(t, "image/png", DocumentMimeType("scan.png"))
	assert.Equal(t, "text/plain", DocumentMimeType("notes.txt"))
	assert.Equal(t, "application/octet-stream", DocumentMimeType("noext"))
}
