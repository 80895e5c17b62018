package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumiskin/skincare-backend/config"
	"github.com/lumiskin/skincare-backend/internal/app/controller"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/lumiskin/skincare-backend/internal/middleware"
	"github.com/lumiskin/skincare-backend/internal/router"
	"github.com/lumiskin/skincare-backend/internal/scheduler"
	"github.com/lumiskin/skincare-backend/internal/storage"
	ws "github.com/lumiskin/skincare-backend/internal/websocket"
	"github.com/lumiskin/skincare-backend/pkg/facebook"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/mailer"
	"github.com/lumiskin/skincare-backend/pkg/oauth"
	"github.com/lumiskin/skincare-backend/pkg/payment/momo"
	"github.com/lumiskin/skincare-backend/pkg/payment/vnpay"
	"github.com/lumiskin/skincare-backend/pkg/payment/zalopay"
	"github.com/lumiskin/skincare-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting skincare backend server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.SeedReferenceData(db.GetDB()); err != nil {
		logger.Warn("Failed to seed reference data", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := db.SeedAdmin(db.GetDB(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Warn("Failed to seed admin account", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs the token blacklist and the feed cache. Both are optional.
	var (
		revoker    service.TokenRevoker
		revocation middleware.RevocationChecker
		feedCache  service.JSONCache
	)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, logout revocation and feed cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		revoker = redis.TokenBlacklist{}
		revocation = redis.TokenBlacklist{}
		feedCache = redis.JSONCache{}
	}

	// Social login providers are enabled by their credentials
	var googleVerifier, facebookVerifier service.IdentityVerifier
	if cfg.OAuth.GoogleClientID != "" {
		googleVerifier = oauth.NewGoogleVerifier(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleTokenInfo)
	}
	if cfg.OAuth.FacebookAppSecret != "" {
		facebookVerifier = oauth.NewFacebookVerifier(cfg.OAuth.FacebookAppSecret, cfg.OAuth.FacebookGraphURL)
	}

	mail := mailer.NewSMTPMailer(cfg.SMTP)

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	database := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	passwordResetRepo := repository.NewPasswordResetRepository(database)
	brandRepo := repository.NewBrandRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	skinTypeRepo := repository.NewSkinTypeRepository(database)
	productRepo := repository.NewProductRepository(database)
	promotionRepo := repository.NewPromotionRepository(database)
	cartRepo := repository.NewCartRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	quizRepo := repository.NewQuizRepository(database)
	attemptRepo := repository.NewQuizAttemptRepository(database)
	routineRepo := repository.NewRoutineRepository(database)
	ratingRepo := repository.NewRatingRepository(database)
	momoRepo := repository.NewMomoRepository(database)
	vnpayRepo := repository.NewVnpayRepository(database)
	zaloPayRepo := repository.NewZaloPayRepository(database)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		googleVerifier,
		facebookVerifier,
		revoker,
	)
	passwordResetService := service.NewPasswordResetService(passwordResetRepo, userRepo, mail, cfg.Server.FrontendURL)
	brandService := service.NewBrandService(brandRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	skinTypeService := service.NewSkinTypeService(skinTypeRepo)
	productService := service.NewProductService(productRepo, brandRepo, categoryRepo)
	promotionService := service.NewPromotionService(promotionRepo)
	cartService := service.NewCartService(cartRepo, productRepo, hub)
	orderService := service.NewOrderService(
		database,
		orderRepo,
		cartRepo,
		promotionRepo,
		promotionService,
		mail,
		hub,
		cfg.Server.FrontendURL,
	)
	quizService := service.NewQuizService(quizRepo, attemptRepo, skinTypeRepo, routineRepo)
	routineService := service.NewRoutineService(routineRepo, skinTypeRepo, productRepo)
	ratingService := service.NewRatingService(ratingRepo, productRepo, orderRepo)
	dashboardService := service.NewDashboardService(orderRepo, userRepo)

	momoService := service.NewMomoService(newMomoGateway(cfg.Payment.Momo), momoRepo, orderService)
	vnpayService := service.NewVnpayService(newVnpayGateway(cfg.Payment.VnPay), vnpayRepo, orderService, cfg.Payment.ExpiryAfter)
	zaloPayService := service.NewZaloPayService(newZaloPayGateway(cfg.Payment.ZaloPay), zaloPayRepo, orderService)
	expiryService := service.NewPaymentExpiryService(momoRepo, vnpayRepo, zaloPayRepo, orderService, cfg.Payment.ExpiryAfter)

	// Initialize controllers
	controllers := router.Controllers{
		Auth:      controller.NewAuthController(authService, passwordResetService),
		User:      controller.NewUserController(authService),
		Brand:     controller.NewBrandController(brandService),
		Category:  controller.NewCategoryController(categoryService),
		SkinType:  controller.NewSkinTypeController(skinTypeService, productService),
		Product:   controller.NewProductController(productService),
		Promotion: controller.NewPromotionController(promotionService),
		Cart:      controller.NewCartController(cartService),
		Order:     controller.NewOrderController(orderService),
		Quiz:      controller.NewQuizController(quizService),
		Routine:   controller.NewRoutineController(routineService),
		Rating:    controller.NewRatingController(ratingService),
		Payment: controller.NewPaymentController(
			momoService,
			vnpayService,
			zaloPayService,
			orderService,
			cfg.Server.FrontendURL+"/payment/result",
		),
		Upload:    controller.NewUploadController(storage.NewS3Storage(cfg.S3)),
		Dashboard: controller.NewDashboardController(dashboardService),
		WebSocket: controller.NewWebSocketController(hub, cfg.CORS.AllowedOrigins),
	}
	if cfg.Facebook.PageID != "" && cfg.Facebook.PageAccessToken != "" {
		pageClient := facebook.NewClient(cfg.OAuth.FacebookGraphURL, cfg.Facebook.PageID, cfg.Facebook.PageAccessToken)
		controllers.Feed = controller.NewFeedController(service.NewFeedService(pageClient, feedCache, cfg.Facebook.FeedCacheTTL))
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocation)

	// Background jobs
	jobs := scheduler.NewPaymentExpiryScheduler(cfg.Payment.SweepSpec, expiryService, passwordResetService)
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}
	defer jobs.Stop()

	// Setup router
	engine := router.NewRouter(controllers, authMiddleware, cfg).Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}

// Gateways are nil when their merchant credentials are missing; the services
// then answer with ErrGatewayUnavailable.

func newMomoGateway(cfg config.MomoConfig) service.MomoGateway {
	client, err := momo.NewClient(momo.Config{
		PartnerCode: cfg.PartnerCode,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Endpoint:    cfg.Endpoint,
		RedirectURL: cfg.RedirectURL,
		IPNURL:      cfg.IPNURL,
		RequestType: cfg.RequestType,
	})
	if err != nil {
		logger.Warn("Momo payments disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return client
}

func newVnpayGateway(cfg config.VnPayConfig) service.VnpayGateway {
	client, err := vnpay.NewClient(vnpay.Config{
		TmnCode:    cfg.TmnCode,
		HashSecret: cfg.HashSecret,
		PaymentURL: cfg.PaymentURL,
		ReturnURL:  cfg.ReturnURL,
		Version:    cfg.Version,
	})
	if err != nil {
		logger.Warn("VNPay payments disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return client
}

func newZaloPayGateway(cfg config.ZaloPayConfig) service.ZaloPayGateway {
	client, err := zalopay.NewClient(zalopay.Config{
		AppID:       cfg.AppID,
		Key1:        cfg.Key1,
		Key2:        cfg.Key2,
		Endpoint:    cfg.Endpoint,
		CallbackURL: cfg.CallbackURL,
		RedirectURL: cfg.RedirectURL,
	})
	if err != nil {
		logger.Warn("ZaloPay payments disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return client
}
