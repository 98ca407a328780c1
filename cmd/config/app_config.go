package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/b1gw1z/frn-backend/internal/api/handlers"
	"github.com/b1gw1z/frn-backend/internal/api/routes"
	"github.com/b1gw1z/frn-backend/internal/middleware"
	"github.com/b1gw1z/frn-backend/internal/utils"
	"github.com/b1gw1z/frn-backend/internal/utils/mailing"
	"github.com/b1gw1z/frn-backend/internal/utils/storage"
	"github.com/b1gw1z/frn-backend/pkg/activity"
	"github.com/b1gw1z/frn-backend/pkg/claim"
	"github.com/b1gw1z/frn-backend/pkg/clock"
	"github.com/b1gw1z/frn-backend/pkg/donation"
	"github.com/b1gw1z/frn-backend/pkg/jwt"
	"github.com/b1gw1z/frn-backend/pkg/reaper"
	"github.com/b1gw1z/frn-backend/pkg/spatial"
	"github.com/b1gw1z/frn-backend/pkg/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, *reaper.Reaper, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	systemClock := clock.NewSystem()
	index := spatial.NewIndex()

	// Repository
	userRepository := user.NewUserRepository(db)
	donationRepository := donation.NewDonationRepository(db, index)
	claimRepository := claim.NewClaimRepository(db)
	activityRepository := activity.NewActivityRepository(db)

	// The spatial projection lives in memory; rebuild it from the durable
	// store before taking traffic.
	if err := replayOpenDonations(donationRepository, index); err != nil {
		return nil, nil, err
	}

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService,
		utils.GetConfig("AUTO_VERIFY_USERS") == "true")
	activityService := activity.NewActivityService(activityRepository)
	donationService := donation.NewDonationService(
		donationRepository,
		userRepository,
		activityRepository,
		index,
		s3,
		systemClock,
	)
	// A nil sender disables donor notifications.
	var claimMailer claim.MailSender
	if utils.GetConfig("CLAIM_EMAIL_ENABLED") == "true" {
		claimMailer = mailing.SendMail
	}
	claimService := claim.NewClaimService(
		donationRepository,
		claimRepository,
		userRepository,
		activityRepository,
		systemClock,
		claimMailer,
	)

	// Handler
	userHandler := handlers.NewUserHandler(userService, activityService, validator)
	donationHandler := handlers.NewDonationHandler(donationService, validator)
	claimHandler := handlers.NewClaimHandler(claimService, validator)

	// routes
	routesConfig := routes.Config{
		App:             app,
		UserHandler:     userHandler,
		DonationHandler: donationHandler,
		ClaimHandler:    claimHandler,
		Middleware:      middlewares,
		JWTService:      jwtService,
	}
	routesConfig.Setup()

	expiryReaper := reaper.New(donationRepository, activityRepository, systemClock, reaperInterval())
	return app, expiryReaper, nil
}

func replayOpenDonations(repo donation.DonationRepository, index spatial.Index) error {
	open, err := repo.GetOpenDonations(context.Background(), 0)
	if err != nil {
		return err
	}
	for _, d := range open {
		index.Insert(d.ID.String(), d.Latitude, d.Longitude)
	}
	log.Infof("spatial index rebuilt with %d open donations", len(open))
	return nil
}

func reaperInterval() time.Duration {
	seconds, err := strconv.Atoi(utils.GetConfig("REAPER_INTERVAL_SECOND"))
	if err != nil || seconds <= 0 {
		return reaper.DefaultInterval
	}
	return time.Duration(seconds) * time.Second
}
