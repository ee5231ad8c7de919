package main

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"

	"onboarding-service/internal/handler"
	"onboarding-service/internal/identity"
	"onboarding-service/internal/middleware"
	"onboarding-service/internal/model"
	"onboarding-service/internal/onboarding"
	"onboarding-service/internal/payment"
	"onboarding-service/internal/store"
	"onboarding-service/pkg/config"
	"onboarding-service/pkg/database"
	"onboarding-service/pkg/jwtutil"
	"onboarding-service/pkg/logger"
	"onboarding-service/prometheus"
)

func main() {
	// Load configuration; required credentials with no value abort startup
	conf, err := config.Load("onboarding")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	// Initialize database connection
	db, err := database.InitDB(&conf.Database)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	// Run migrations for onboarding models
	if err := database.MigrateModels(&model.User{}, &model.Merchant{}); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// Wire the saga to its collaborators
	identityClient := identity.NewClient(&conf.Identity)
	paymentClient := payment.NewClient(&conf.Payment)
	recordStore := store.New(db)
	saga := onboarding.NewSaga(
		identityClient,
		recordStore,
		payment.NewUserProvisioner(paymentClient),
		payment.NewWalletProvisioner(paymentClient, conf.Payment.Currency),
	)

	onboardingHandler := handler.NewOnboardingHandler(saga)
	merchantHandler := handler.NewMerchantHandler(recordStore)

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	// Initialize Echo framework
	e := echo.New()

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Public routes
	e.GET("/healthz", handler.HealthCheck)

	// Secured routes - require authentication
	merchants := e.Group("/merchants")
	merchants.Use(middleware.JWTAuthMiddleware(jwt))

	merchants.POST("/onboard", onboardingHandler.Onboard)
	merchants.GET("/:id", merchantHandler.GetMerchant)
	merchants.GET("", merchantHandler.ListMerchantsByOwner)

	// Start server
	log.Info("Starting onboarding-service on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
