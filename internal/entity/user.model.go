package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"`
	Verified     bool      `gorm:"default:false" json:"verified"`

	VerifyToken      string     `gorm:"type:varchar(255)" json:"-"`
	ResetToken       string     `gorm:"type:varchar(255)" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
