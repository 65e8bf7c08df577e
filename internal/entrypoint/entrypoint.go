package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/database"
	dbaudit "github.com/mrlokans/circulation/internal/database/audit"
	"github.com/mrlokans/circulation/internal/database/users"
	http_controllers "github.com/mrlokans/circulation/internal/http"
	"github.com/mrlokans/circulation/internal/payment"
	"github.com/mrlokans/circulation/internal/scheduler"
	"github.com/mrlokans/circulation/internal/services"
	"github.com/mrlokans/circulation/internal/tasks"
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT.
	// SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop the HTTP server first so no new borrow/return requests race the
	// task queue shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library Circulation v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if cfg.Database.SeedData {
		if err := db.SeedSampleData(time.Now().UTC()); err != nil {
			log.Fatalf("Failed to seed sample data: %v", err)
		}
	}

	store := db.Store()

	// Audit trail for circulation, payments, auth and scheduling
	auditService := audit.NewService(dbaudit.NewRepository(db.DB))

	catalog := services.NewCatalogService(store)
	catalog.SetRecorder(auditService)
	search := services.NewSearchService(store)
	circulation := services.NewCirculationService(store)
	circulation.SetRecorder(auditService)
	reports := services.NewReportService(store)

	gateway := payment.NewMockGateway(cfg.Payment.GatewayLatency, cfg.Payment.GatewayMaxAmount)
	payments := services.NewPaymentService(circulation, store, gateway)
	payments.SetRecorder(auditService)

	routerCfg := http_controllers.RouterConfig{
		Catalog:     catalog,
		Search:      search,
		Circulation: circulation,
		Reports:     reports,
		Payments:    payments,
		Database:    db,
		Version:     version,
		AuditLog:    auditService,
		AuthConfig:  cfg.Auth,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var overdueScheduler *scheduler.OverdueScanScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
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

		taskClient.Register(
			tasks.NewOverdueScanQueue(reports, auditService),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.TaskStatus = taskClient

		if cfg.OverdueScan.Enabled {
			overdueScheduler = scheduler.NewOverdueScanScheduler(taskClient, auditService, scheduler.Config{
				Schedule:           cfg.OverdueScan.Schedule,
				AuditRetentionDays: cfg.Audit.RetentionDays,
			})
			if err := overdueScheduler.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start overdue scan scheduler: %v", err)
			}
			log.Printf("Overdue scan scheduled: %s", cfg.OverdueScan.Schedule)
			routerCfg.OverdueScan = overdueScheduler
			routerCfg.ScanSchedule = overdueScheduler
		}
	} else if cfg.OverdueScan.Enabled {
		log.Printf("WARNING: overdue scan requires the task queue. Set TASKS_ENABLED=true to enable it.")
	}

	var authController *auth.AuthController
	var sessionManager *auth.SessionManager
	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		csrfSecret, err := loadCSRFSecret(cfg.Auth.SessionSecret)
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}

		authController = auth.NewAuthController(authService, sessionManager, cfg.Auth)
		authController.SetAuditor(auditService)

		routerCfg.AuthService = authService
		routerCfg.SessionManager = sessionManager
		routerCfg.AuthController = authController
		routerCfg.CSRFSecret = csrfSecret

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No staff accounts found. POST /api/auth/setup to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (staff endpoints are open)")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if overdueScheduler != nil {
			overdueScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if authController != nil {
			authController.Stop()
		}
		if sessionManager != nil {
			sessionManager.Close()
		}
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

// loadCSRFSecret decodes a hex session secret, falls back to the raw bytes
// for non-hex values and generates a fresh secret when none is configured.
func loadCSRFSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}
