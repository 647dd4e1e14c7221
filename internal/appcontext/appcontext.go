package appcontext

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solohsu29/gondola-manager/internal/services"
	"github.com/solohsu29/gondola-manager/internal/storage"
	"github.com/solohsu29/gondola-manager/internal/upload"
)

type Context struct {
	DB     *gorm.DB
	Logger *zap.Logger

	Uploads  *upload.Engine
	Resolver *storage.Resolver
	Mailer   *services.MailService

	BaseURL       string
	SweepInterval time.Duration
}
