package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/solohsu29/gondola-manager/internal/config"
	"github.com/solohsu29/gondola-manager/internal/expiry"
	"github.com/solohsu29/gondola-manager/internal/http"
)

func main() {
	// Initialize context
	ctx, err := config.InitContext()
	if err != nil {
		log.Fatalf("Failed to initialize context: %v", err)
	}

	defer func() {
		if err := ctx.Logger.Sync(); err != nil {
			fmt.Printf("Failed to sync logger: %v\n", err)
		}
	}()

	// Ensure the database connection is closed when the application exits
	sqlDB, err := ctx.DB.DB()
	if err != nil {
		ctx.Logger.Fatal("Failed to get underlying SQL DB from GORM DB", zap.Error(err))
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			ctx.Logger.Fatal("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run the certificate expiry sweep in the background
	if alertTo := os.Getenv("EXPIRY_ALERT_EMAIL"); alertTo != "" {
		ctx.Mailer.SetAlertRecipient(alertTo)
	}
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	sweeper := expiry.NewSweeper(ctx.DB, ctx.Logger, ctx.Mailer, ctx.SweepInterval)
	go sweeper.Run(sweepCtx)

	// Initialize HTTP service
	service := http.NewHTTPService(ctx)

	// Start the server
	if err := service.Engine().Run(":8080"); err != nil {
		ctx.Logger.Fatal("Failed to start the server", zap.Error(err))
	}
}
