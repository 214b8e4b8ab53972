package logging

import (
	"apppresser.com/updater/internal/application/ports"
)

// SilentLogger implements ports.LoggingGateway and discards everything.
// Used by tests and by commands whose stdout must stay machine readable.
type SilentLogger struct{}

// NewSilentLogger creates a new silent logger
func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (l *SilentLogger) Log(level ports.LogLevel, message string, fields map[string]interface{}) {}
func (l *SilentLogger) LogError(err error, message string, fields map[string]interface{})       {}
func (l *SilentLogger) LogInfo(message string, fields map[string]interface{})                   {}
func (l *SilentLogger) LogDebug(message string, fields map[string]interface{})                  {}
func (l *SilentLogger) LogWarning(message string, fields map[string]interface{})                {}
func (l *SilentLogger) SetLogLevel(level ports.LogLevel)                                        {}
func (l *SilentLogger) GetLogLevel() ports.LogLevel                                             { return ports.LogLevelError }
