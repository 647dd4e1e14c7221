package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document types tracked for a deployment.
const (
	DocumentTypeDO          = "DO"          // Delivery Order
	DocumentTypeDD          = "DD"          // Deployment Document
	DocumentTypeSWP         = "SWP"         // Safe Work Procedure
	DocumentTypeRA          = "RA"          // Risk Assessment
	DocumentTypeMOMCert     = "MOM_CERT"    // MOM Certificate
	DocumentTypePECalc      = "PE_CALC"     // PE Calculation
	DocumentTypeCOS         = "COS"         // Certificate of Serviceability
	DocumentTypeLEW         = "LEW"         // Licensed Electrical Worker
	DocumentTypeInspection  = "INSPECTION"  // Inspection document
	DocumentTypeOffHire     = "OFF_HIRE"    // Off-hire form
	DocumentTypeAdhoc       = "ADHOC"       // Ad-hoc deployment
	DocumentTypeOrientation = "ORIENTATION" // Orientation document
)

const (
	DocStatusValid    = "valid"
	DocStatusExpiring = "expiring"
	DocStatusExpired  = "expired"
)

// Document belongs to exactly one of a gondola or a project. Both foreign
// keys may be nil while the document is orphaned pending a later reattach.
type Document struct {
	gorm.Model
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Type       string     `gorm:"type:varchar(50);default:ADHOC" json:"type"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	UploadedAt time.Time  `json:"uploadedAt"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	FileURL    string     `gorm:"type:text" json:"fileUrl"`
	Status     string     `gorm:"type:varchar(50);default:valid" json:"status"`

	GondolaID *uuid.UUID `gorm:"type:uuid" json:"gondolaId,omitempty"`
	ProjectID *uuid.UUID `gorm:"type:uuid" json:"projectId,omitempty"`

	// Content holds the raw bytes. It is excluded from JSON and from list
	// projections to keep payloads small; the download endpoint streams it.
	Content []byte `gorm:"type:bytea" json:"-"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DocumentListColumns is the projection used by list queries; everything
// except the binary content.
var DocumentListColumns = []string{
	"id", "created_at", "updated_at", "deleted_at",
	"type", "name", "uploaded_at", "expiry_date", "file_url", "status",
	"gondola_id", "project_id",
}
