package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GondolaStatusDeployed        = "deployed"
	GondolaStatusInUse           = "in-use"
	GondolaStatusUnderInspection = "under-inspection"
	GondolaStatusMaintenance     = "maintenance"
	GondolaStatusOffHired        = "off-hired"
)

// Location is the nested location shape. Columns stay flat for compatibility
// with rows written under the old flat schema.
type Location struct {
	Bay       string `gorm:"type:varchar(50);column:bay" json:"bay"`
	Floor     string `gorm:"type:varchar(50);column:floor" json:"floor"`
	Block     string `gorm:"type:varchar(50);column:block" json:"block"`
	Elevation string `gorm:"type:varchar(50);column:elevation" json:"elevation"`
}

type Gondola struct {
	gorm.Model
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SerialNumber string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"serialNumber"`
	Status       string    `gorm:"type:varchar(50);default:deployed" json:"status"`
	Location     Location  `gorm:"embedded" json:"location"`

	DeployedAt     *time.Time `json:"deployedAt,omitempty"`
	LastInspection *time.Time `json:"lastInspection,omitempty"`
	NextInspection *time.Time `json:"nextInspection,omitempty"`

	ProjectID *uuid.UUID `gorm:"type:uuid" json:"projectId,omitempty"`

	// Documents and photos are exclusively owned: deleting a gondola
	// cascades to both.
	Documents []Document `gorm:"foreignKey:GondolaID" json:"documents"`
	Photos    []Photo    `gorm:"foreignKey:GondolaID" json:"photos"`
}

func (g *Gondola) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (g *Gondola) Normalize() {
	if g.Documents == nil {
		g.Documents = []Document{}
	}
	if g.Photos == nil {
		g.Photos = []Photo{}
	}
}
