// File: sajilosewa/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sajilosewa/config"
	"sajilosewa/database"
	bookingRepoPkg "sajilosewa/database/repository/booking"
	businessRepoPkg "sajilosewa/database/repository/business"
	paymentRepoPkg "sajilosewa/database/repository/payment"
	"sajilosewa/handlers"
	"sajilosewa/middleware"
	"sajilosewa/models"
	"sajilosewa/routes"
	"sajilosewa/services/booking"
	"sajilosewa/services/payment"
	"sajilosewa/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	businessRepo := businessRepoPkg.NewMongoBusinessRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()

	// payment providers.
	providers := payment.Registry{
		models.MethodStripe: &payment.StripeProvider{
			Key:    config.AppConfig.StripeKey,
			Logger: logger,
		},
		models.MethodKhalti: &payment.KhaltiProvider{
			Key:       config.AppConfig.KhaltiKey,
			BaseURL:   config.AppConfig.KhaltiBaseURL,
			ReturnURL: config.AppConfig.PaymentReturnURL,
			Logger:    logger,
		},
	}

	// services.
	availabilityService := &booking.DefaultAvailabilityService{
		Repo:   bookingRepo,
		Logger: logger,
	}

	bookingService := &booking.DefaultBookingSessionService{
		Store:          &booking.RedisSessionStore{Client: utils.GetSessionCacheClient()},
		Pending:        &payment.RedisPendingStore{Client: utils.GetPendingCacheClient()},
		Providers:      providers,
		Availability:   availabilityService,
		BookingRepo:    bookingRepo,
		BusinessRepo:   businessRepo,
		PaymentRepo:    paymentRepo,
		Logger:         logger,
		AllowNoPayment: config.AppConfig.AllowNoPayment,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		OpenSession:          bookingHandler.OpenSession,
		GetSession:           bookingHandler.GetSession,
		UpdateSession:        bookingHandler.UpdateSession,
		CloseSession:         bookingHandler.CloseSession,
		Submit:               bookingHandler.Submit,
		BookedSlots:          bookingHandler.BookedSlots,
		ConfirmStripePayment: bookingHandler.ConfirmStripePayment,
		KhaltiReturn:         bookingHandler.KhaltiReturn,
		History:              bookingHandler.History,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
