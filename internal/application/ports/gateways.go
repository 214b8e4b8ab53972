package ports

import (
	"context"

	"apppresser.com/updater/internal/core/domain"
)

// LicenseRequest is a single call to the store's licensing endpoint
type LicenseRequest struct {
	APIURL   string
	Action   domain.LicenseAction
	License  string
	ItemName string
}

// LicenseGateway performs licensing calls against the remote store
type LicenseGateway interface {
	// Do executes the request. Failures are reported through the result,
	// never as a panic.
	Do(ctx context.Context, req LicenseRequest) domain.LicenseResult
}

// UpdaterFactory builds updater handles for registered plugins
type UpdaterFactory interface {
	// Init prepares the updater library. It must be safe to call repeatedly.
	Init() error

	// New creates an updater for one plugin
	New(apiURL, pluginFile string, metadata map[string]any) (domain.UpdaterHandle, error)
}

// TitleFilter transforms the item name before it is sent to the store
type TitleFilter interface {
	Apply(name string, contextID int) string
}

// LoggingGateway defines the interface for logging operations
type LoggingGateway interface {
	// Log logs a message with the specified level
	Log(level LogLevel, message string, fields map[string]interface{})

	// LogError logs an error
	LogError(err error, message string, fields map[string]interface{})

	LogInfo(message string, fields map[string]interface{})
	LogDebug(message string, fields map[string]interface{})
	LogWarning(message string, fields map[string]interface{})

	// SetLogLevel sets the logging level
	SetLogLevel(level LogLevel)

	// GetLogLevel returns the current logging level
	GetLogLevel() LogLevel
}

// LogLevel defines the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
