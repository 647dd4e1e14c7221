package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/state"
)

// GetDashboard hydrates an in-memory snapshot and answers every derived view
// from it, so the counts and the widget ranking always agree with each other.
func GetDashboard(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projects []entity.Project
		if err := ctx.DB.Preload("Documents", documentListScope).
			Find(&projects).Error; err != nil {
			ctx.Logger.Error("Failed to get projects", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		var gondolas []entity.Gondola
		if err := withGondolaIncludes(ctx.DB).Find(&gondolas).Error; err != nil {
			ctx.Logger.Error("Failed to get gondolas", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		var certs []entity.CertificateExpiry
		if err := ctx.DB.Find(&certs).Error; err != nil {
			ctx.Logger.Error("Failed to get certificate expiries", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		var documents []entity.Document
		if err := documentListScope(ctx.DB).Find(&documents).Error; err != nil {
			ctx.Logger.Error("Failed to get documents", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		store := state.NewStore()
		store.SetProjects(projects)
		store.SetGondolas(gondolas)
		store.SetCertificates(certs)
		store.SetDocuments(documents)

		now := time.Now()
		recent := store.RecentProjects()
		if len(recent) > 5 {
			recent = recent[:5]
		}

		c.JSON(http.StatusOK, gin.H{
			"totalProjects":        store.TotalProjects(),
			"activeGondolas":       store.ActiveGondolas(),
			"pendingInspections":   store.PendingInspections(now),
			"expiringCertificates": store.ExpiringCertificates(),
			"certificateWidget":    store.CertificateWidget(),
			"recentProjects":       recent,
			"orphanDocuments":      store.OrphanDocuments(),
		})
	}
}
