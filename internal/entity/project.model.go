package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

type Project struct {
	gorm.Model
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ClientName string     `gorm:"type:varchar(255);not null" json:"clientName"`
	SiteName   string     `gorm:"type:varchar(255);not null" json:"siteName"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Status     string     `gorm:"type:varchar(50);default:active" json:"status"`

	// Gondolas is a settable association: a gondola can be re-pointed at
	// another project without being deleted with it.
	Gondolas       []Gondola       `gorm:"foreignKey:ProjectID" json:"gondolas"`
	Documents      []Document      `gorm:"foreignKey:ProjectID" json:"documents"`
	DeliveryOrders []DeliveryOrder `gorm:"foreignKey:ProjectID" json:"deliveryOrders"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Normalize replaces nil collection fields with empty slices so display code
// can iterate without nil checks.
func (p *Project) Normalize() {
	if p.Gondolas == nil {
		p.Gondolas = []Gondola{}
	}
	if p.Documents == nil {
		p.Documents = []Document{}
	}
	if p.DeliveryOrders == nil {
		p.DeliveryOrders = []DeliveryOrder{}
	}
	for i := range p.Gondolas {
		p.Gondolas[i].Normalize()
	}
}
