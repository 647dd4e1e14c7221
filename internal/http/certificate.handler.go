package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/expiry"
)

func GetCertificateExpiries(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var certs []entity.CertificateExpiry
		if err := ctx.DB.Order("expiry_date ASC").Find(&certs).Error; err != nil {
			ctx.Logger.Error("Failed to get certificate expiries", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get certificate expiries"})
			return
		}

		c.JSON(http.StatusOK, certs)
	}
}

func CreateCertificateExpiry(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type createRequest struct {
			DocumentID   uuid.UUID `json:"documentId" binding:"required"`
			GondolaID    uuid.UUID `json:"gondolaId" binding:"required"`
			SerialNumber string    `json:"serialNumber"`
			DocumentType string    `json:"documentType"`
			ExpiryDate   time.Time `json:"expiryDate" binding:"required"`
		}

		var request createRequest
		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		if request.SerialNumber == "" {
			var gondola entity.Gondola
			if err := ctx.DB.First(&gondola, "id = ?", request.GondolaID).Error; err == nil {
				request.SerialNumber = gondola.SerialNumber
			}
		}

		status, days := expiry.Classify(request.ExpiryDate, time.Now())
		cert := entity.CertificateExpiry{
			DocumentID:    request.DocumentID,
			GondolaID:     request.GondolaID,
			SerialNumber:  request.SerialNumber,
			DocumentType:  request.DocumentType,
			ExpiryDate:    request.ExpiryDate,
			DaysRemaining: days,
			Status:        status,
		}
		if err := ctx.DB.Create(&cert).Error; err != nil {
			ctx.Logger.Error("Failed to create certificate expiry", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create certificate expiry"})
			return
		}

		c.JSON(http.StatusOK, cert)
	}
}
