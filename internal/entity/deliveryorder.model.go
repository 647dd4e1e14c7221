package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryOrder numbers are human references. They are treated as unique by
// selection UI but not enforced unique here, matching how orders are reused
// across projects in practice.
type DeliveryOrder struct {
	gorm.Model
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Number    string     `gorm:"type:varchar(100);not null" json:"number"`
	Date      time.Time  `json:"date"`
	FileURL   *string    `gorm:"type:text" json:"fileUrl,omitempty"`
	ProjectID *uuid.UUID `gorm:"type:uuid" json:"projectId,omitempty"`
}

func (d *DeliveryOrder) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
