package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "QUOTEDESK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load and the test helpers.
const (
	EnvAppEnv        = "QUOTEDESK_APP_ENV"
	EnvPort          = "QUOTEDESK_APP_PORT"
	EnvProductsCSV   = "QUOTEDESK_CATALOG_PRODUCTS_CSV"
	EnvSubsidyCSV    = "QUOTEDESK_CATALOG_SUBSIDY_CSV"
	EnvStorageDriver = "QUOTEDESK_STORAGE_DRIVER"
	EnvStoragePath   = "QUOTEDESK_STORAGE_PATH"
	EnvStorageDSN    = "QUOTEDESK_STORAGE_DSN"
	EnvRedisURL      = "QUOTEDESK_REDIS_URL"
)

// Storage driver names accepted by StorageConfig.Driver.
const (
	StorageDriverMemory = "memory"
	StorageDriverPebble = "pebble"
	StorageDriverRedis  = "redis"
	StorageDriverGorm   = "gorm"
)
