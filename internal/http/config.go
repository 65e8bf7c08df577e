package http

import (
	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/config"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core services
	Catalog     Catalog
	Search      Searcher
	Circulation Circulation
	Reports     PatronReporter
	Payments    Payments

	// Health checks
	Database Pinger
	Version  string

	// Audit log (optional)
	AuditLog AuditLog

	// Background tasks (optional)
	TaskStatus   TaskStatuser
	OverdueScan  ScanTrigger
	ScanSchedule ScanSchedule

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthController *auth.AuthController
	CSRFSecret     []byte
}
