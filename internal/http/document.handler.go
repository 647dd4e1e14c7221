package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/storage"
	"github.com/solohsu29/gondola-manager/internal/upload"
)

// readMultipartFile loads the submitted file into an upload.File.
func readMultipartFile(header *multipart.FileHeader) (upload.File, error) {
	src, err := header.Open()
	if err != nil {
		return upload.File{}, err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return upload.File{}, err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = storage.DocumentMimeType(header.Filename)
	}

	return upload.File{
		Name:     header.Filename,
		MimeType: mimeType,
		Content:  content,
	}, nil
}

func uploadErrorStatus(err error) int {
	if upload.IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func UploadDocument(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			ctx.Logger.Error("Failed to get file from request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file or projectId/gondolaId"})
			return
		}

		target := upload.Target{}
		if v := c.PostForm("projectId"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid projectId"})
				return
			}
			target.ProjectID = &id
		}
		if v := c.PostForm("gondolaId"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gondolaId"})
				return
			}
			target.GondolaID = &id
		}

		file, err := readMultipartFile(header)
		if err != nil {
			ctx.Logger.Error("Failed to read file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File read error"})
			return
		}

		doc, err := ctx.Uploads.CommitDocument(c.Request.Context(), file, target)
		if err != nil {
			ctx.Logger.Error("Failed to upload document", zap.Error(err))
			c.JSON(uploadErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         doc.ID,
			"url":        doc.FileURL,
			"name":       doc.Name,
			"type":       doc.Type,
			"uploadedAt": doc.UploadedAt,
			"status":     doc.Status,
			"gondolaId":  doc.GondolaID,
			"projectId":  doc.ProjectID,
		})
	}
}

func UploadCertificate(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}

		gondolaID, err := uuid.Parse(c.PostForm("gondolaId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid gondolaId"})
			return
		}

		docType := c.PostForm("type")
		if docType == "" {
			docType = entity.DocumentTypeMOMCert
		}

		expiryDate, err := time.Parse("2006-01-02", c.PostForm("expiryDate"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid expiryDate, expected YYYY-MM-DD"})
			return
		}

		file, err := readMultipartFile(header)
		if err != nil {
			ctx.Logger.Error("Failed to read file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File read error"})
			return
		}

		doc, cert, err := ctx.Uploads.CommitCertificate(c.Request.Context(), file, gondolaID, docType, expiryDate)
		if err != nil {
			ctx.Logger.Error("Failed to upload certificate", zap.Error(err))
			c.JSON(uploadErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"document": doc, "certificateExpiry": cert})
	}
}

func DownloadDocument(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID := c.Param("documentID")

		var doc entity.Document
		if err := ctx.DB.First(&doc, "id = ?", documentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}

		content, mimeType, disposition, err := ctx.Resolver.ResolveDocument(&doc)
		if err != nil {
			ctx.Logger.Error("Failed to resolve document content", zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}

		c.Header("Content-Disposition", disposition)
		c.Data(http.StatusOK, mimeType, content)
	}
}

func DeleteDocument(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type deleteRequest struct {
			DocumentID string `json:"documentId" binding:"required"`
		}

		var request deleteRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing documentId"})
			return
		}

		if err := ctx.Uploads.DeleteAttachment(c.Request.Context(), request.DocumentID); err != nil {
			ctx.Logger.Error("Failed to delete document", zap.Error(err))
			c.JSON(uploadErrorStatus(err), gin.H{"error": "Failed to delete document"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func ReattachDocument(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type reattachRequest struct {
			DocumentID uuid.UUID `json:"documentId" binding:"required"`
			ProjectID  uuid.UUID `json:"projectId" binding:"required"`
		}

		var request reattachRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing documentId or projectId"})
			return
		}

		doc, err := ctx.Uploads.Reattach(c.Request.Context(), request.DocumentID, request.ProjectID)
		if err != nil {
			ctx.Logger.Error("Failed to reattach document", zap.Error(err))
			c.JSON(uploadErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "document": doc})
	}
}
