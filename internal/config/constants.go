package config

const (
	// DefaultDatabasePath is where the catalog database lives unless DATABASE_PATH is set.
	DefaultDatabasePath = "./library.db"

	// DefaultOverdueScanSchedule runs the overdue scan daily at 06:00.
	DefaultOverdueScanSchedule = "0 6 * * *"

	// DefaultGatewayMaxAmount is the largest single charge the payment gateway accepts.
	DefaultGatewayMaxAmount = "1000.00"
)
