// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, sample data
//	├── store.go         # services.Store over books + loans, with transactions
//	├── books/           # Catalog rows and availability counters
//	├── loans/           # Borrow records
//	├── audit/           # Audit event log
//	└── users/           # Librarian accounts
//
// # Using Sub-packages
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./library.db")
//
//	// The circulation core talks to the combined store
//	store := db.Store()
//	svc := services.NewCirculationService(store)
//
//	// Other components use a single repository
//	auditRepo := audit.NewRepository(db.DB)
//	userRepo := users.NewRepository(db.DB)
//
// # Transactions
//
// Store.Transaction hands fn a Store bound to one gorm transaction, so paired
// writes such as "insert borrow record" and "decrement availability" commit
// or roll back together.
//
// # Interface Implementations
//
//   - Store: implements services.Store
//   - books.Repository: implements services.BookStore
//   - loans.Repository: implements services.LoanStore
//   - audit.Repository: used by audit.Service and tasks.AuditEventCleaner
//   - users.Repository: implements auth.UserRepository
package database
