// Package interfaces documents the core abstractions used throughout the application.
//
// Interfaces are declared by the package that consumes them. This package only
// collects the compile-time checks that tie each interface to its production
// implementation.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore, LoanStore, Store: catalog and loan persistence (internal/services/interfaces.go)
//   - UserRepository: staff accounts (internal/auth/service.go)
//   - Pinger: database health (internal/http/health.go)
//
// ## External Service Interfaces
//
//   - Gateway: card payments and refunds (internal/payment/gateway.go)
//
// ## Audit Interfaces
//
//   - EventRecorder: circulation and payment events (internal/services/interfaces.go)
//   - LoginAuditor: login attempts (internal/auth/handlers.go)
//   - ScheduleAuditor: scheduler activity (internal/scheduler/overdue_scan.go)
//   - OverdueNotifier, AuditEventCleaner: task side effects (internal/tasks/)
//
// ## Background Task Interfaces
//
//   - TaskEnqueuer: enqueue work from the scheduler (internal/scheduler/overdue_scan.go)
//   - TaskStatuser, ScanTrigger: task endpoints (internal/http/tasks.go)
//
// # Adding a New Payment Gateway
//
//  1. Implement Gateway in internal/payment/
//
//     type StripeGateway struct {
//         client *http.Client
//         apiKey string
//     }
//
//     func (g *StripeGateway) ProcessPayment(ctx context.Context, patronID string, amount fees.Money, description string) (Charge, error)
//     func (g *StripeGateway) RefundPayment(ctx context.Context, transactionID string, amount fees.Money) (Refund, error)
//
//     var _ Gateway = (*StripeGateway)(nil)
//
//  2. Pass it to services.NewPaymentService in entrypoint.go
//
// # Adding a New Background Task
//
//  1. Define the task and its processor in internal/tasks/ following
//     overdue_scan.go (a Config method naming the queue, a processor that
//     takes consumer interfaces, and a NewXQueue constructor).
//
//  2. Register the queue on the task client in entrypoint.go
//
//  3. Enqueue it from a handler or from the scheduler
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
