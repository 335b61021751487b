package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/config"
	"github.com/klncollege/od-provider/database"
	"github.com/klncollege/od-provider/handlers"
	admin_handlers "github.com/klncollege/od-provider/handlers/admin"
	auth_handlers "github.com/klncollege/od-provider/handlers/auth"
	notification_handlers "github.com/klncollege/od-provider/handlers/notification"
	request_handlers "github.com/klncollege/od-provider/handlers/request"
	teacher_handlers "github.com/klncollege/od-provider/handlers/teacher"
	"github.com/klncollege/od-provider/services"
	"github.com/klncollege/od-provider/services/storage"
	"github.com/klncollege/od-provider/utils/auth"
	"github.com/klncollege/od-provider/utils/cache"
	"github.com/klncollege/od-provider/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to read environment configuration")
	}

	jwtSecret := getEnv.JWT_SECRET
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "od-provider-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs brute force protection; the API stays up without it
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage for uploaded documents; metadata-only without it
	var objectStore *storage.Client
	if getEnv.SPACES_BUCKET != "" {
		objectStore, err = storage.NewClient(storage.Config{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Documents will not be stored.", err)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	flowMode := services.ParseFlowMode(getEnv.APPROVAL_FLOW)
	emailService := services.NewEmailService()
	notificationService := services.NewNotificationService(db)
	approvalService := services.NewApprovalService(db, flowMode, notificationService, emailService)
	requestService := services.NewRequestService(db, objectStore)
	teacherService := services.NewTeacherService(db, approvalService, emailService)
	statsService := services.NewStatsService(db)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, emailService)
	requestHandler := request_handlers.NewRequestHandler(requestService, approvalService)
	teacherHandler := teacher_handlers.NewTeacherHandler(approvalService)
	adminHandler := admin_handlers.NewAdminHandler(db, teacherService, statsService)
	notificationHandler := notification_handlers.NewNotificationHandler(notificationService)

	// Apply security middleware
	allowedOrigins := getEnv.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/verify-email", authHandler.VerifyEmail)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/auto-login", authHandler.AutoLogin)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authGroup.Post("/request-password-change-otp", authMiddleware.Required(), authHandler.RequestPasswordChangeOTP)
	authGroup.Post("/change-password-with-otp", authMiddleware.Required(), authHandler.ChangePasswordWithOTP)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Request routes (protected, role-scoped inside the handlers)
	requests := api.Group("/requests", authMiddleware.Required())
	requests.Post("/", requestHandler.SubmitRequest)
	requests.Get("/", requestHandler.ListRequests)
	requests.Get("/:id", requestHandler.GetRequest)
	requests.Delete("/:id", requestHandler.DeleteRequest)

	// Teacher review routes
	teacher := api.Group("/teacher", authMiddleware.Required(), authMiddleware.RequireRole("teacher"))
	teacher.Get("/queue", teacherHandler.Queue)
	teacher.Post("/requests/:id/review", teacherHandler.Review)

	// Admin routes
	admin := api.Group("/admin", authMiddleware.RequireAdmin())
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/audit", adminHandler.ListAuditLogs)
	admin.Get("/teachers", adminHandler.ListTeachers)
	admin.Post("/teachers", middleware.AdminAuditLog(db, "teacher_create", "teachers"), adminHandler.CreateTeacher)
	admin.Get("/teachers/:id", adminHandler.GetTeacher)
	admin.Put("/teachers/:id", middleware.AdminAuditLog(db, "teacher_update", "teachers"), adminHandler.UpdateTeacher)
	admin.Delete("/teachers/:id", middleware.AdminAuditLog(db, "teacher_delete", "teachers"), adminHandler.DeleteTeacher)
	admin.Post("/teachers/:id/toggle-active", middleware.AdminAuditLog(db, "teacher_toggle_active", "teachers"), adminHandler.ToggleTeacherActive)

	// Notification routes (protected)
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
}
