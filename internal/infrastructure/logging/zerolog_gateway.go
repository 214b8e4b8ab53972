package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"apppresser.com/updater/internal/application/ports"
)

// ZerologGateway implements ports.LoggingGateway on top of zerolog
type ZerologGateway struct {
	logger zerolog.Logger
	level  ports.LogLevel
	mutex  sync.RWMutex
}

// Options configures a ZerologGateway
type Options struct {
	Level   ports.LogLevel
	Console bool      // human readable output instead of JSON
	Output  io.Writer // defaults to stderr
}

// NewZerologGateway creates a logger writing to opts.Output
func NewZerologGateway(opts Options) *ZerologGateway {
	var output io.Writer = os.Stderr
	if opts.Output != nil {
		output = opts.Output
	}
	if opts.Console {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
	}

	level := opts.Level
	if level == "" {
		level = ports.LogLevelInfo
	}

	g := &ZerologGateway{
		logger: zerolog.New(output).With().Timestamp().Str("component", "updater").Logger(),
	}
	g.SetLogLevel(level)

	return g
}

// Log logs a message with the specified level
func (g *ZerologGateway) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	g.mutex.RLock()
	logger := g.logger
	g.mutex.RUnlock()

	logger.WithLevel(toZerologLevel(level)).Fields(fields).Msg(message)
}

// LogError logs an error
func (g *ZerologGateway) LogError(err error, message string, fields map[string]interface{}) {
	g.mutex.RLock()
	logger := g.logger
	g.mutex.RUnlock()

	logger.Error().Err(err).Fields(fields).Msg(message)
}

func (g *ZerologGateway) LogInfo(message string, fields map[string]interface{}) {
	g.Log(ports.LogLevelInfo, message, fields)
}

func (g *ZerologGateway) LogDebug(message string, fields map[string]interface{}) {
	g.Log(ports.LogLevelDebug, message, fields)
}

func (g *ZerologGateway) LogWarning(message string, fields map[string]interface{}) {
	g.Log(ports.LogLevelWarn, message, fields)
}

// SetLogLevel sets the logging level
func (g *ZerologGateway) SetLogLevel(level ports.LogLevel) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.level = level
	g.logger = g.logger.Level(toZerologLevel(level))
}

// GetLogLevel returns the current logging level
func (g *ZerologGateway) GetLogLevel() ports.LogLevel {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.level
}

// ParseLogLevel maps a config string to a level, falling back to info
func ParseLogLevel(s string) ports.LogLevel {
	switch ports.LogLevel(s) {
	case ports.LogLevelDebug, ports.LogLevelInfo, ports.LogLevelWarn, ports.LogLevelError:
		return ports.LogLevel(s)
	default:
		return ports.LogLevelInfo
	}
}

func toZerologLevel(level ports.LogLevel) zerolog.Level {
	switch level {
	case ports.LogLevelDebug:
		return zerolog.DebugLevel
	case ports.LogLevelWarn:
		return zerolog.WarnLevel
	case ports.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
