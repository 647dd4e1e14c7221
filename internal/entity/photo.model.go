package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Photo struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	URL         string    `gorm:"type:text" json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Description string    `gorm:"type:text" json:"description"`
	MimeType    string    `gorm:"type:varchar(100)" json:"mimeType,omitempty"`
	GondolaID   uuid.UUID `gorm:"type:uuid;not null" json:"gondolaId"`

	Content []byte `gorm:"type:bytea" json:"-"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

var PhotoListColumns = []string{
	"id", "created_at", "updated_at", "deleted_at",
	"url", "uploaded_at", "description", "mime_type", "gondola_id",
}
