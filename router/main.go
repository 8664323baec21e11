package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/config"
	"github.com/coursehunt/api/database"
	"github.com/coursehunt/api/handlers"
	auth_handlers "github.com/coursehunt/api/handlers/auth"
	blog_handlers "github.com/coursehunt/api/handlers/blog"
	coupon_handlers "github.com/coursehunt/api/handlers/coupon"
	course_handlers "github.com/coursehunt/api/handlers/course"
	feedback_handlers "github.com/coursehunt/api/handlers/feedback"
	instructor_handlers "github.com/coursehunt/api/handlers/instructor"
	payment_handlers "github.com/coursehunt/api/handlers/payment"
	"github.com/coursehunt/api/services"
	croncfg "github.com/coursehunt/api/services/cron"
	paymentsvc "github.com/coursehunt/api/services/payment"
	"github.com/coursehunt/api/services/storage"
	"github.com/coursehunt/api/utils/auth"
	"github.com/coursehunt/api/utils/cache"
	"github.com/coursehunt/api/utils/middleware"
)

// SetupRoutes wires every handler into the fiber app and returns the
// cron manager so the caller controls its lifecycle.
func SetupRoutes(app *fiber.App, store database.Storage, env *config.EnviornmentVariable) *croncfg.CronManager {
	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "coursehunt-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and listing caches are disabled.", err)
		redisCache = nil
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	emailService := services.NewEmailService(env)

	var spacesClient *storage.SpacesClient
	if env.SPACES_ACCESS_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize media storage: %v. Uploads are disabled.", err)
		}
	}

	gateway := paymentsvc.NewRazorpayGateway(env.RAZORPAY_KEY_ID, env.RAZORPAY_KEY_SECRET)
	paymentService := paymentsvc.NewService(db, gateway, redisCache)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection,
		emailService, redisCache, auth_handlers.NewOAuthConfig(env))
	courseHandler := course_handlers.NewCourseHandler(db, spacesClient)
	paymentHandler := payment_handlers.NewPaymentHandler(paymentService)
	couponHandler := coupon_handlers.NewCouponHandler(db)
	blogHandler := blog_handlers.NewBlogHandler(db, redisCache)
	feedbackHandler := feedback_handlers.NewFeedbackHandler(db)
	instructorHandler := instructor_handlers.NewInstructorHandler(db)

	allowedOrigins := env.FRONTEND_URL
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/activate", authHandler.Activate)
	authGroup.Post("/resend-activation", authHandler.ResendActivation)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Social login
	authGroup.Get("/google", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Get("/github", authHandler.GithubLogin)
	authGroup.Get("/github/callback", authHandler.GithubCallback)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Course catalog
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.List)                                          // Public: published courses
	courses.Get("/purchased", authMiddleware.Required(), courseHandler.Purchased) // Owned courses
	courses.Get("/admin", authMiddleware.RequireAdmin(), courseHandler.AdminList) // Admin: all statuses
	courses.Get("/:id", authMiddleware.Optional(), courseHandler.Get)
	courses.Get("/:id/study", authMiddleware.Required(), courseHandler.Study)

	// Course management (admin)
	courses.Post("/", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "course_create", "courses"), courseHandler.Create)
	courses.Put("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "course_update", "courses"), courseHandler.Update)
	courses.Delete("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "course_delete", "courses"), courseHandler.Delete)
	courses.Post("/:id/toggle-status", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "course_toggle_status", "courses"), courseHandler.ToggleStatus)
	courses.Post("/:id/thumbnail", authMiddleware.RequireAdmin(), courseHandler.UploadThumbnail)

	// Payments
	payments := api.Group("/payments", authMiddleware.Required())
	payments.Get("/checkout/:course_id", paymentHandler.Checkout)
	payments.Post("/initiate/:course_id", paymentHandler.Initiate)
	payments.Post("/verify", paymentHandler.Verify)
	payments.Post("/cancel", paymentHandler.Cancel)
	payments.Get("/transactions/me", paymentHandler.ListMyTransactions)
	api.Get("/payments/transactions", authMiddleware.RequireAdmin(), paymentHandler.ListTransactions)

	// Coupons
	coupons := api.Group("/coupons")
	coupons.Post("/apply/:course_id", authMiddleware.Required(), paymentHandler.ApplyCoupon)
	coupons.Get("/", authMiddleware.RequireAdmin(), couponHandler.List)
	coupons.Post("/", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "coupon_create", "coupons"), couponHandler.Create)
	coupons.Put("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "coupon_update", "coupons"), couponHandler.Update)
	coupons.Delete("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "coupon_delete", "coupons"), couponHandler.Delete)

	// Blogs
	blogs := api.Group("/blogs")
	blogs.Get("/", blogHandler.List)
	blogs.Get("/admin", authMiddleware.RequireAdmin(), blogHandler.AdminList)
	blogs.Get("/:id", authMiddleware.Optional(), blogHandler.Get)
	blogs.Post("/:id/like", authMiddleware.Required(), blogHandler.ToggleLike)
	blogs.Post("/:id/comments", authMiddleware.Required(), blogHandler.AddComment)
	blogs.Post("/", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "blog_create", "blogs"), blogHandler.Create)
	blogs.Put("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "blog_update", "blogs"), blogHandler.Update)
	api.Put("/comments/:id", authMiddleware.Required(), blogHandler.UpdateComment)

	// Feedback
	feedback := api.Group("/feedback")
	feedback.Post("/", authMiddleware.Required(), feedbackHandler.Submit)
	feedback.Get("/", authMiddleware.RequireAdmin(), feedbackHandler.List)
	feedback.Delete("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "feedback_delete", "feedbacks"), feedbackHandler.Delete)

	// Instructors
	instructors := api.Group("/instructors")
	instructors.Get("/", instructorHandler.List)
	instructors.Post("/join", authMiddleware.Required(), instructorHandler.Join)
	instructors.Get("/:id", instructorHandler.Get)

	return croncfg.NewCronManager(db, paymentService)
}
