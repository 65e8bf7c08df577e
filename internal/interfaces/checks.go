package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/database/books"
	"github.com/mrlokans/circulation/internal/database/users"
	"github.com/mrlokans/circulation/internal/http"
	"github.com/mrlokans/circulation/internal/payment"
	"github.com/mrlokans/circulation/internal/scheduler"
	"github.com/mrlokans/circulation/internal/services"
	"github.com/mrlokans/circulation/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Store implementations
var _ services.Store = (*database.Store)(nil)
var _ services.BookStore = (*books.Repository)(nil)

// UserRepository implementations
var _ auth.UserRepository = (*users.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// External Services
// =============================================================================

// Gateway implementations
var _ payment.Gateway = (*payment.MockGateway)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ services.EventRecorder = (*audit.Service)(nil)
var _ auth.LoginAuditor = (*audit.Service)(nil)
var _ scheduler.ScheduleAuditor = (*audit.Service)(nil)
var _ tasks.OverdueNotifier = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ http.AuditLog = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ tasks.OverdueLister = (*services.ReportService)(nil)
var _ http.TaskStatuser = (*tasks.Client)(nil)
var _ http.ScanTrigger = (*scheduler.OverdueScanScheduler)(nil)
var _ http.ScanSchedule = (*scheduler.OverdueScanScheduler)(nil)

// =============================================================================
// HTTP Controllers
// =============================================================================

var _ http.Catalog = (*services.CatalogService)(nil)
var _ http.Searcher = (*services.SearchService)(nil)
var _ http.Circulation = (*services.CirculationService)(nil)
var _ http.PatronReporter = (*services.ReportService)(nil)
var _ http.Payments = (*services.PaymentService)(nil)
