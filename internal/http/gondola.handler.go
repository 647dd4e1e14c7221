package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
)

// locationFields accepts both the nested location object and the flat
// bay/floor/block/elevation shape older clients still send.
type locationFields struct {
	Location  *entity.Location `json:"location"`
	Bay       string           `json:"bay"`
	Floor     string           `json:"floor"`
	Block     string           `json:"block"`
	Elevation string           `json:"elevation"`
}

func (l *locationFields) resolve() *entity.Location {
	if l.Location != nil {
		return l.Location
	}
	if l.Bay == "" && l.Floor == "" && l.Block == "" && l.Elevation == "" {
		return nil
	}
	return &entity.Location{Bay: l.Bay, Floor: l.Floor, Block: l.Block, Elevation: l.Elevation}
}

func withGondolaIncludes(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Documents", documentListScope).
		Preload("Photos", photoListScope)
}

func GetGondolas(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var gondolas []entity.Gondola
		if err := withGondolaIncludes(ctx.DB).Find(&gondolas).Error; err != nil {
			ctx.Logger.Error("Failed to get gondolas", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get gondolas"})
			return
		}

		for i := range gondolas {
			gondolas[i].Normalize()
		}
		c.JSON(http.StatusOK, gondolas)
	}
}

func GetGondola(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		gondolaID := c.Param("gondolaID")

		var gondola entity.Gondola
		if err := withGondolaIncludes(ctx.DB).First(&gondola, "id = ?", gondolaID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gondola not found"})
			return
		}

		gondola.Normalize()
		c.JSON(http.StatusOK, gondola)
	}
}

func CreateGondola(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type createGondolaRequest struct {
			locationFields
			SerialNumber   string     `json:"serialNumber" binding:"required"`
			Status         string     `json:"status"`
			DeployedAt     *time.Time `json:"deployedAt"`
			LastInspection *time.Time `json:"lastInspection"`
			NextInspection *time.Time `json:"nextInspection"`
			ProjectID      *uuid.UUID `json:"projectId"`
		}

		var request createGondolaRequest
		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		if request.Status == "" {
			request.Status = entity.GondolaStatusDeployed
		}

		gondola := entity.Gondola{
			SerialNumber:   request.SerialNumber,
			Status:         request.Status,
			DeployedAt:     request.DeployedAt,
			LastInspection: request.LastInspection,
			NextInspection: request.NextInspection,
			ProjectID:      request.ProjectID,
		}
		if loc := request.resolve(); loc != nil {
			gondola.Location = *loc
		}

		if err := ctx.DB.Create(&gondola).Error; err != nil {
			ctx.Logger.Error("Failed to create gondola", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create gondola"})
			return
		}

		gondola.Normalize()
		c.JSON(http.StatusOK, gondola)
	}
}

// photoRequest mirrors the photo entries a full gondola update may carry.
// Entries without an id are created; entries with an id are updated; stored
// photos absent from the list are deleted.
type photoRequest struct {
	ID          *uuid.UUID `json:"id"`
	URL         string     `json:"url"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	Description string     `json:"description"`
}

func UpdateGondola(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		gondolaID, err := uuid.Parse(c.Param("gondolaID"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gondola id"})
			return
		}

		type updateGondolaRequest struct {
			locationFields
			SerialNumber   *string        `json:"serialNumber"`
			Status         *string        `json:"status"`
			DeployedAt     *time.Time     `json:"deployedAt"`
			LastInspection *time.Time     `json:"lastInspection"`
			NextInspection *time.Time     `json:"nextInspection"`
			ProjectID      *uuid.UUID     `json:"projectId"`
			Photos         []photoRequest `json:"photos"`
		}

		var request updateGondolaRequest
		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		var gondola entity.Gondola
		if err := ctx.DB.First(&gondola, "id = ?", gondolaID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gondola not found"})
			return
		}

		updates := map[string]interface{}{}
		if request.SerialNumber != nil {
			updates["serial_number"] = *request.SerialNumber
		}
		if request.Status != nil {
			updates["status"] = *request.Status
		}
		if request.DeployedAt != nil {
			updates["deployed_at"] = *request.DeployedAt
		}
		if request.LastInspection != nil {
			updates["last_inspection"] = *request.LastInspection
		}
		if request.NextInspection != nil {
			updates["next_inspection"] = *request.NextInspection
		}
		if request.ProjectID != nil {
			updates["project_id"] = *request.ProjectID
		}
		if loc := request.resolve(); loc != nil {
			updates["bay"] = loc.Bay
			updates["floor"] = loc.Floor
			updates["block"] = loc.Block
			updates["elevation"] = loc.Elevation
		}

		err = ctx.DB.Transaction(func(tx *gorm.DB) error {
			if len(updates) > 0 {
				if err := tx.Model(&gondola).Updates(updates).Error; err != nil {
					return err
				}
			}

			// A nil photo list leaves stored photos alone; a non-nil list is
			// reconciled against the store.
			if request.Photos != nil {
				return reconcilePhotos(tx, gondola.ID, request.Photos)
			}
			return nil
		})
		if err != nil {
			ctx.Logger.Error("Failed to update gondola", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gondola"})
			return
		}

		var updated entity.Gondola
		if err := withGondolaIncludes(ctx.DB).First(&updated, "id = ?", gondolaID).Error; err != nil {
			ctx.Logger.Error("Failed to reload gondola", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload gondola"})
			return
		}
		updated.Normalize()
		c.JSON(http.StatusOK, updated)
	}
}

// reconcilePhotos deletes stored photos missing from the incoming list,
// updates entries that carry an id, and creates the rest.
func reconcilePhotos(tx *gorm.DB, gondolaID uuid.UUID, photos []photoRequest) error {
	var existing []entity.Photo
	if err := tx.Select(entity.PhotoListColumns).
		Where("gondola_id = ?", gondolaID).
		Find(&existing).Error; err != nil {
		return err
	}

	incoming := map[uuid.UUID]bool{}
	for _, p := range photos {
		if p.ID != nil {
			incoming[*p.ID] = true
		}
	}

	for _, p := range existing {
		if !incoming[p.ID] {
			if err := tx.Delete(&entity.Photo{}, "id = ?", p.ID).Error; err != nil {
				return err
			}
		}
	}

	for _, p := range photos {
		if p.ID != nil {
			updates := map[string]interface{}{
				"url":         p.URL,
				"uploaded_at": p.UploadedAt,
				"description": p.Description,
			}
			if err := tx.Model(&entity.Photo{}).Where("id = ?", *p.ID).Updates(updates).Error; err != nil {
				return err
			}
			continue
		}
		photo := entity.Photo{
			URL:         p.URL,
			UploadedAt:  p.UploadedAt,
			Description: p.Description,
			GondolaID:   gondolaID,
		}
		if err := tx.Create(&photo).Error; err != nil {
			return err
		}
	}
	return nil
}

func DeleteGondola(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		gondolaID, err := uuid.Parse(c.Param("gondolaID"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gondola id"})
			return
		}

		// Documents and photos are owned exclusively by the gondola and die
		// with it; so do the materialized certificate entries.
		err = ctx.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("gondola_id = ?", gondolaID).Delete(&entity.Document{}).Error; err != nil {
				return err
			}
			if err := tx.Where("gondola_id = ?", gondolaID).Delete(&entity.Photo{}).Error; err != nil {
				return err
			}
			if err := tx.Where("gondola_id = ?", gondolaID).Delete(&entity.CertificateExpiry{}).Error; err != nil {
				return err
			}
			return tx.Delete(&entity.Gondola{}, "id = ?", gondolaID).Error
		})
		if err != nil {
			ctx.Logger.Error("Failed to delete gondola", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete gondola"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
