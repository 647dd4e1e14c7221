package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/upload"
)

// documentListScope keeps binary content out of list projections.
func documentListScope(db *gorm.DB) *gorm.DB {
	return db.Select(entity.DocumentListColumns)
}

func photoListScope(db *gorm.DB) *gorm.DB {
	return db.Select(entity.PhotoListColumns)
}

func withProjectIncludes(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Gondolas").
		Preload("Gondolas.Documents", documentListScope).
		Preload("Gondolas.Photos", photoListScope).
		Preload("Documents", documentListScope).
		Preload("DeliveryOrders")
}

func GetProjects(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projects []entity.Project
		if err := withProjectIncludes(ctx.DB).
			Order("created_at DESC").
			Find(&projects).Error; err != nil {
			ctx.Logger.Error("Failed to get projects", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get projects"})
			return
		}

		for i := range projects {
			projects[i].Normalize()
		}
		c.JSON(http.StatusOK, projects)
	}
}

func GetProject(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("projectID")

		var project entity.Project
		if err := withProjectIncludes(ctx.DB).
			First(&project, "id = ?", projectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		project.Normalize()
		c.JSON(http.StatusOK, project)
	}
}

// nullableTime distinguishes an explicit JSON null, which clears the stored
// value, from an absent key, which leaves it untouched.
type nullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *nullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

type deliveryOrderRequest struct {
	Number  string    `json:"number" binding:"required"`
	Date    time.Time `json:"date"`
	FileURL *string   `json:"fileUrl"`
}

func CreateProject(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		type createProjectRequest struct {
			ClientName     string                 `json:"clientName" binding:"required"`
			SiteName       string                 `json:"siteName" binding:"required"`
			StartDate      time.Time              `json:"startDate"`
			EndDate        *time.Time             `json:"endDate"`
			Status         string                 `json:"status"`
			GondolaIDs     []string               `json:"gondolaIds"`
			DeliveryOrders []deliveryOrderRequest `json:"deliveryOrders"`
			// DocumentIDs attaches already-uploaded orphan documents.
			// Preview ids of never-committed staged files are skipped; the
			// client commits those through the upload endpoint once this
			// project's id is known.
			DocumentIDs []string `json:"documentIds"`
		}

		var request createProjectRequest
		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		if request.Status == "" {
			request.Status = entity.ProjectStatusActive
		}

		project := entity.Project{
			ClientName: request.ClientName,
			SiteName:   request.SiteName,
			StartDate:  request.StartDate,
			EndDate:    request.EndDate,
			Status:     request.Status,
		}

		err := ctx.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&project).Error; err != nil {
				return err
			}

			for _, order := range request.DeliveryOrders {
				do := entity.DeliveryOrder{
					Number:    order.Number,
					Date:      order.Date,
					FileURL:   order.FileURL,
					ProjectID: &project.ID,
				}
				if err := tx.Create(&do).Error; err != nil {
					return err
				}
			}

			if len(request.GondolaIDs) > 0 {
				if err := tx.Model(&entity.Gondola{}).
					Where("id IN ?", request.GondolaIDs).
					Update("project_id", project.ID).Error; err != nil {
					return err
				}
			}

			for _, docID := range request.DocumentIDs {
				if upload.IsPreviewID(docID) {
					continue
				}
				if err := tx.Model(&entity.Document{}).
					Where("id = ? AND project_id IS NULL AND gondola_id IS NULL", docID).
					Update("project_id", project.ID).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			ctx.Logger.Error("Failed to create project", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
			return
		}

		var created entity.Project
		if err := withProjectIncludes(ctx.DB).First(&created, "id = ?", project.ID).Error; err != nil {
			ctx.Logger.Error("Failed to reload project", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload project"})
			return
		}
		created.Normalize()
		c.JSON(http.StatusOK, created)
	}
}

func UpdateProject(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("projectID")

		type updateProjectRequest struct {
			ClientName *string      `json:"clientName"`
			SiteName   *string      `json:"siteName"`
			StartDate  *time.Time   `json:"startDate"`
			EndDate    nullableTime `json:"endDate"`
			Status     *string      `json:"status"`
			// GondolaIDs and DeliveryOrderIDs are settable sets; nil leaves
			// the association untouched. Documents are never dropped by a
			// project update.
			GondolaIDs       []string `json:"gondolaIds"`
			DeliveryOrderIDs []string `json:"deliveryOrderIds"`
		}

		var request updateProjectRequest
		if err := c.BindJSON(&request); err != nil {
			ctx.Logger.Error("Failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to bind request"})
			return
		}

		var project entity.Project
		if err := ctx.DB.First(&project, "id = ?", projectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		updates := map[string]interface{}{}
		if request.ClientName != nil {
			updates["client_name"] = *request.ClientName
		}
		if request.SiteName != nil {
			updates["site_name"] = *request.SiteName
		}
		if request.StartDate != nil {
			updates["start_date"] = *request.StartDate
		}
		if request.EndDate.Set {
			updates["end_date"] = request.EndDate.Value
		}
		if request.Status != nil {
			updates["status"] = *request.Status
		}

		err := ctx.DB.Transaction(func(tx *gorm.DB) error {
			if len(updates) > 0 {
				if err := tx.Model(&project).Updates(updates).Error; err != nil {
					return err
				}
			}

			if request.GondolaIDs != nil {
				if err := tx.Model(&entity.Gondola{}).
					Where("project_id = ?", project.ID).
					Update("project_id", nil).Error; err != nil {
					return err
				}
				if len(request.GondolaIDs) > 0 {
					if err := tx.Model(&entity.Gondola{}).
						Where("id IN ?", request.GondolaIDs).
						Update("project_id", project.ID).Error; err != nil {
						return err
					}
				}
			}

			if request.DeliveryOrderIDs != nil {
				if err := tx.Model(&entity.DeliveryOrder{}).
					Where("project_id = ?", project.ID).
					Update("project_id", nil).Error; err != nil {
					return err
				}
				if len(request.DeliveryOrderIDs) > 0 {
					if err := tx.Model(&entity.DeliveryOrder{}).
						Where("id IN ?", request.DeliveryOrderIDs).
						Update("project_id", project.ID).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			ctx.Logger.Error("Failed to update project", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
			return
		}

		var updated entity.Project
		if err := withProjectIncludes(ctx.DB).First(&updated, "id = ?", project.ID).Error; err != nil {
			ctx.Logger.Error("Failed to reload project", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload project"})
			return
		}
		updated.Normalize()
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteProject(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := uuid.Parse(c.Param("projectID"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		// Delivery orders and project-level documents die with the project;
		// gondolas are only detached, their lifecycle is independent.
		err = ctx.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("project_id = ?", projectID).Delete(&entity.DeliveryOrder{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&entity.Document{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&entity.Gondola{}).
				Where("project_id = ?", projectID).
				Update("project_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&entity.Project{}, "id = ?", projectID).Error
		})
		if err != nil {
			ctx.Logger.Error("Failed to delete project", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
