package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/b1gw1z/frn-backend/cmd/config"
	migration "github.com/b1gw1z/frn-backend/cmd/database/migrate"
	"github.com/b1gw1z/frn-backend/internal/utils"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	app, expiryReaper, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go expiryReaper.Run(ctx)

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	if err := app.Shutdown(); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
