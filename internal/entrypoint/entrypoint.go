package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/papersbook/storefront/internal/audit"
	"github.com/papersbook/storefront/internal/auth"
	"github.com/papersbook/storefront/internal/config"
	"github.com/papersbook/storefront/internal/covers"
	"github.com/papersbook/storefront/internal/database"
	"github.com/papersbook/storefront/internal/database/authors"
	"github.com/papersbook/storefront/internal/database/books"
	"github.com/papersbook/storefront/internal/database/collections"
	"github.com/papersbook/storefront/internal/database/reviews"
	"github.com/papersbook/storefront/internal/database/sales"
	"github.com/papersbook/storefront/internal/database/users"
	http_controllers "github.com/papersbook/storefront/internal/http"
	"github.com/papersbook/storefront/internal/payment"
	"github.com/papersbook/storefront/internal/scheduler"
	"github.com/papersbook/storefront/internal/settlement"
	"github.com/papersbook/storefront/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscanll.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall. SIGKILL but can"t be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Storefront v%s", version)

	if cfg.Payment.AppToken == "" || cfg.Payment.AppSecret == "" {
		log.Printf("WARNING: Payment provider credentials are not set. Paid checkouts will fail. Set 'PAYMENT_APP_TOKEN' and 'PAYMENT_APP_SECRET' to enable them.")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Per-aggregate repositories
	booksRepo := books.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	authorsRepo := authors.NewRepository(db.DB)
	salesRepo := sales.NewRepository(db.DB)
	reviewsRepo := reviews.NewRepository(db.DB)
	collectionsRepo := collections.NewRepository(db.DB)

	// Create auditor for recording settlement events
	auditor := audit.NewAuditor(cfg.Audit.Dir)

	// Payment provider client
	paymentClient := payment.NewClient(cfg.Payment)

	// Cover cache for locally caching book covers
	coverCacheDir := filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	coverCache, err := covers.NewCache(coverCacheDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	} else {
		log.Printf("Cover cache initialized at %s", coverCacheDir)
	}

	// Settlement service, the reconciliation core
	settlementService := settlement.NewService(db.DB, authorsRepo, cfg.Settlement.PlatformFeeBps, auditor)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var auditCleanup *scheduler.AuditCleanupJob
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewSettleSaleQueue(settlementService),
			tasks.NewCleanupAuditEventsQueue(auditor),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		auditCleanup = scheduler.NewAuditCleanupJob(taskClient, cfg.Audit.RetentionDays)
		if err := auditCleanup.Start(); err != nil {
			log.Fatalf("Failed to start audit cleanup job: %v", err)
		}
	}

	// Start the settlement sweeper for stale pending sales
	sweeper := scheduler.NewSettlementSweeper(settlementService, cfg.Settlement)
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start settlement sweeper: %v", err)
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var rateLimiter *auth.RateLimiter
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		// Create auth service
		authService = auth.NewService(db.DB, cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		// Initialize session manager
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		// Create auth middleware
		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		// Rate limiter for login attempts
		rateLimiter = auth.NewRateLimiter(auth.RateLimitConfig{
			MaxAttempts:     cfg.Auth.MaxLoginAttempts,
			WindowDuration:  cfg.Auth.RateLimitWindow,
			LockoutDuration: cfg.Auth.LockoutDuration,
		})
		defer rateLimiter.Stop()

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			// Generate a secret
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		// Check if setup is needed
		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. Run 'storefront create-user' to create an account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:          db,
		Auditor:           auditor,
		CatalogStore:      booksRepo,
		CoverCache:        coverCache,
		CollectionsStore:  collectionsRepo,
		ReviewStore:       reviewsRepo,
		LibraryStore:      usersRepo,
		SalesStore:        salesRepo,
		PaymentClient:     paymentClient,
		SettlementService: settlementService,
		PublicBaseURL:     cfg.Payment.PublicBaseURL,
		AuthService:       authService,
		SessionManager:    sessionManager,
		AuthMiddleware:    authMiddleware,
		RateLimiter:       rateLimiter,
		AuthConfig:        cfg.Auth,
		CSRFSecret:        csrfSecret,
		SecureCookies:     cfg.Auth.SecureCookies,
		TaskClient:        taskClient,
		Version:           version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		sweeper.Stop()
		if auditCleanup != nil {
			auditCleanup.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
