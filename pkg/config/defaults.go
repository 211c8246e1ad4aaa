package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaTopic   = "booking.events"

	DefaultPort = "8080"

	// DefaultSlotStepMinutes is the fixed grid granularity. Independent
	// of service duration so different-length services share one grid.
	DefaultSlotStepMinutes = 30

	// DefaultLockTTL is the checkout window a slot lock grants.
	DefaultLockTTL = 5 * time.Minute

	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"

	DefaultIdempotencyTTL = 24 * time.Hour

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
