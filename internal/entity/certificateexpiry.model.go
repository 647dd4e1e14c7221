package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateExpiry is a materialized index over documents that carry an
// expiry date. SerialNumber and DaysRemaining are snapshots taken at write
// time; the periodic sweep keeps DaysRemaining and Status aligned with
// wall-clock time.
type CertificateExpiry struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DocumentID    uuid.UUID `gorm:"type:uuid;not null" json:"documentId"`
	GondolaID     uuid.UUID `gorm:"type:uuid;not null" json:"gondolaId"`
	SerialNumber  string    `gorm:"type:varchar(100)" json:"serialNumber"`
	DocumentType  string    `gorm:"type:varchar(50)" json:"documentType"`
	ExpiryDate    time.Time `json:"expiryDate"`
	DaysRemaining int       `json:"daysRemaining"`
	Status        string    `gorm:"type:varchar(50);default:valid" json:"status"`
}

func (c *CertificateExpiry) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
