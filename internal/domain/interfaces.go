package domain

import "time"

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string

	// GetStorageBucket returns the cloud bucket name; empty selects the
	// local disk backend.
	GetStorageBucket() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetDBPath() string

	GetExtractorURL() string
	GetQueueCapacity() int
	GetEnqueueTimeout() time.Duration
	GetNotifyTimeout() time.Duration
	GetShutdownTimeout() time.Duration
}
