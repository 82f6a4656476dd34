package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyRequestID = "request_id"

	// Database table names
	TableUsers         = "users"
	TableRentals       = "rentals"
	TablePayments      = "payments"
	TableTelegramUsers = "telegram_users"
	TableScheduledJobs = "scheduled_jobs"

	// Redis keys
	DefaultJobKeyPrefix = "leasebot:jobs"
)
