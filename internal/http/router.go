package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
)

// hstsMaxAge is one year, in seconds.
const hstsMaxAge = 365 * 24 * 60 * 60

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.AuthConfig.Mode == config.AuthModeLocal && cfg.AuthConfig.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	// CSRF runs before the session middleware so the session context is not
	// replaced by CSRF's request copy
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, auth.SessionCookieName, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := auth.NewMiddleware(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
	router.Use(authMiddleware.Handler())
	staff := authMiddleware.RequireRole(entities.UserRoleLibrarian, entities.UserRoleAdmin)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router, authMiddleware)
	}

	health := NewHealthController(cfg.Database, cfg.ScanSchedule, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Catalog
	books := NewBooksController(cfg.Catalog)
	api.GET("/books", books.GetAllBooks)
	api.GET("/books/:id", books.GetBook)
	api.POST("/books", staff, books.AddBook)

	search := NewSearchController(cfg.Search)
	api.GET("/search", search.Search)

	// Circulation
	circulation := NewCirculationController(cfg.Circulation)
	api.POST("/borrow", circulation.Borrow)
	api.POST("/return", circulation.Return)
	api.GET("/late_fee/:patron_id/:book_id", circulation.LateFee)

	// Reports
	patrons := NewPatronsController(cfg.Reports)
	api.GET("/patrons/:patron_id/status", patrons.Status)
	api.GET("/overdue", staff, patrons.Overdue)

	// Payments
	if cfg.Payments != nil {
		payments := NewPaymentsController(cfg.Payments)
		api.POST("/payments", payments.Pay)
		api.POST("/refunds", staff, payments.Refund)
	}

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		api.GET("/audit", staff, auditController.ListEvents)
	}

	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus, cfg.OverdueScan)
		api.GET("/tasks/:id", staff, tasksController.GetTaskStatus)
		api.POST("/tasks/overdue-scan/run", staff, tasksController.RunOverdueScan)
	}

	return router
}
