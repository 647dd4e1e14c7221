package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
)

func UploadPhoto(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			ctx.Logger.Error("Failed to get file from request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file or gondolaId"})
			return
		}

		gondolaID, err := uuid.Parse(c.PostForm("gondolaId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file or gondolaId"})
			return
		}
		description := c.PostForm("description")

		file, err := readMultipartFile(header)
		if err != nil {
			ctx.Logger.Error("Failed to read file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File read error"})
			return
		}

		photo, err := ctx.Uploads.CommitPhoto(c.Request.Context(), file, gondolaID, description)
		if err != nil {
			ctx.Logger.Error("Failed to upload photo", zap.Error(err))
			c.JSON(uploadErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":          photo.ID,
			"url":         photo.URL,
			"uploadedAt":  photo.UploadedAt,
			"description": photo.Description,
			"gondolaId":   photo.GondolaID,
		})
	}
}

func DownloadPhoto(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		photoID := c.Param("photoID")

		var photo entity.Photo
		if err := ctx.DB.First(&photo, "id = ?", photoID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
			return
		}

		content, mimeType, disposition, err := ctx.Resolver.ResolvePhoto(&photo)
		if err != nil {
			ctx.Logger.Error("Failed to resolve photo content", zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
			return
		}

		c.Header("Content-Disposition", disposition)
		c.Data(http.StatusOK, mimeType, content)
	}
}

func DeletePhoto(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type deleteRequest struct {
			PhotoID string `json:"photoId" binding:"required"`
		}

		var request deleteRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing photoId"})
			return
		}

		if err := ctx.Uploads.DeletePhoto(c.Request.Context(), request.PhotoID); err != nil {
			ctx.Logger.Error("Failed to delete photo", zap.Error(err))
			c.JSON(uploadErrorStatus(err), gin.H{"error": "Failed to delete photo"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
