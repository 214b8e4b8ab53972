package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/core/filtering"
)

// Request timeout bounds, in seconds
const (
	MinRequestTimeout = 1
	MaxRequestTimeout = 300
)

// ConfigValidator validates configuration values
type ConfigValidator struct {
	methods   map[string]bool
	logLevels map[string]bool
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		methods: map[string]bool{
			http.MethodGet:  true,
			http.MethodPost: true,
		},
		logLevels: map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		},
	}
}

// ValidateStoreURL validates a store endpoint URL
func (v *ConfigValidator) ValidateStoreURL(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("store URL cannot be empty")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (must be http or https)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must include host")
	}

	return nil
}

// ValidateRequestMethod accepts GET and POST, case-insensitively
func (v *ConfigValidator) ValidateRequestMethod(method string) error {
	if !v.methods[strings.ToUpper(strings.TrimSpace(method))] {
		return fmt.Errorf("invalid request method: %s (valid methods: GET, POST)", method)
	}
	return nil
}

// ValidateTimeout validates a request timeout in seconds
func (v *ConfigValidator) ValidateTimeout(seconds int) error {
	if seconds < MinRequestTimeout {
		return fmt.Errorf("timeout too short (minimum %ds)", MinRequestTimeout)
	}
	if seconds > MaxRequestTimeout {
		return fmt.Errorf("timeout too long (maximum %ds)", MaxRequestTimeout)
	}
	return nil
}

// ValidateLogLevel validates log level value
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	if !v.logLevels[strings.ToLower(strings.TrimSpace(level))] {
		return fmt.Errorf("invalid log level: %s (valid levels: debug, info, warn, error)", level)
	}
	return nil
}

// ValidateTitleFilters checks that every name is a known title filter
func (v *ConfigValidator) ValidateTitleFilters(names []string) error {
	_, err := filtering.NewNamedFilter(names)
	return err
}

// ValidatePluginDeclaration validates a plugin declared in the config file
func (v *ConfigValidator) ValidatePluginDeclaration(decl ports.PluginDeclaration) error {
	if strings.TrimSpace(decl.File) == "" {
		return fmt.Errorf("plugin file cannot be empty")
	}
	if raw, ok := decl.APIData["url"]; ok {
		s, isString := raw.(string)
		if !isString {
			return fmt.Errorf("plugin %s: url must be a string", decl.File)
		}
		if err := v.ValidateStoreURL(s); err != nil {
			return fmt.Errorf("plugin %s: %w", decl.File, err)
		}
	}
	return nil
}

// ValidateConfiguration validates every field and joins the failures
func (v *ConfigValidator) ValidateConfiguration(config *ports.Configuration) error {
	var errs []error

	if err := v.ValidateStoreURL(config.StoreURL); err != nil {
		errs = append(errs, fmt.Errorf("store_url: %w", err))
	}
	if err := v.ValidateRequestMethod(config.RequestMethod); err != nil {
		errs = append(errs, fmt.Errorf("request_method: %w", err))
	}
	if err := v.ValidateTimeout(config.RequestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("request_timeout: %w", err))
	}
	if err := v.ValidateLogLevel(config.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if err := v.ValidateTitleFilters(config.TitleFilters); err != nil {
		errs = append(errs, fmt.Errorf("title_filters: %w", err))
	}
	if strings.TrimSpace(config.Author) == "" {
		errs = append(errs, fmt.Errorf("author: cannot be empty"))
	}

	seen := make(map[string]bool, len(config.Plugins))
	for _, decl := range config.Plugins {
		if err := v.ValidatePluginDeclaration(decl); err != nil {
			errs = append(errs, fmt.Errorf("plugins: %w", err))
			continue
		}
		if seen[decl.File] {
			errs = append(errs, fmt.Errorf("plugins: duplicate plugin %s", decl.File))
		}
		seen[decl.File] = true
	}

	return errors.Join(errs...)
}
