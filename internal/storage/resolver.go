package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/solohsu29/gondola-manager/internal/entity"
)

// Resolver turns a stored document or photo into servable bytes plus the
// headers the download endpoints need. Content normally lives in the record
// itself; rows written under the old schema kept only a path under the
// public uploads directory, so an on-disk fallback covers those.
type Resolver struct {
	UploadsDir string
}

func NewResolver(uploadsDir string) *Resolver {
	return &Resolver{UploadsDir: uploadsDir}
}

// ResolveDocument returns the document bytes, a MIME type derived from the
// file name, and an attachment content disposition.
func (r *Resolver) ResolveDocument(doc *entity.Document) ([]byte, string, string, error) {
	content := doc.Content
	if len(content) == 0 {
		var err error
		content, err = r.readLegacy(doc.FileURL)
		if err != nil {
			return nil, "", "", fmt.Errorf("document %s has no content: %w", doc.ID, err)
		}
	}
	mime := DocumentMimeType(doc.Name)
	disposition := fmt.Sprintf("attachment; filename=%q", safeFilename(doc.Name, "document"))
	return content, mime, disposition, nil
}

// ResolvePhoto returns the photo bytes, its stored MIME type (falling back
// to a name heuristic, then image/jpeg), and an inline disposition.
func (r *Resolver) ResolvePhoto(photo *entity.Photo) ([]byte, string, string, error) {
	content := photo.Content
	if len(content) == 0 {
		var err error
		content, err = r.readLegacy(photo.URL)
		if err != nil {
			return nil, "", "", fmt.Errorf("photo %s has no content: %w", photo.ID, err)
		}
	}
	mime := photo.MimeType
	if mime == "" {
		mime = PhotoMimeType(photo.URL)
	}
	disposition := fmt.Sprintf("inline; filename=%q", "photo_"+photo.ID.String()+extensionFor(mime))
	return content, mime, disposition, nil
}

// readLegacy loads bytes for records whose url is a path under the public
// uploads directory.
func (r *Resolver) readLegacy(fileURL string) ([]byte, error) {
	if r.UploadsDir == "" || !strings.HasPrefix(fileURL, "/uploads/") {
		return nil, fmt.Errorf("no resolvable content reference %q", fileURL)
	}
	name := filepath.Base(fileURL)
	return os.ReadFile(filepath.Join(r.UploadsDir, name))
}

// DocumentMimeType guesses a document MIME type from its file name,
// defaulting to application/octet-stream.
func DocumentMimeType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// PhotoMimeType guesses a photo MIME type from its url, defaulting to
// image/jpeg.
func PhotoMimeType(url string) string {
	switch strings.ToLower(filepath.Ext(url)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func safeFilename(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return filepath.Base(name)
}
