package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/core/domain"
	"apppresser.com/updater/internal/core/filtering"
	"apppresser.com/updater/internal/infrastructure/logging"
)

// RecordLookup resolves plugin paths to updater records
type RecordLookup interface {
	Lookup(pluginFile string) (*domain.UpdaterRecord, bool)
}

// StatusSettingSuffix is appended to an option key to store the last status
const StatusSettingSuffix = "_status"

// LicenseService validates license keys for registered plugins
type LicenseService struct {
	registry RecordLookup
	gateway  ports.LicenseGateway
	filter   ports.TitleFilter
	logger   ports.LoggingGateway
}

// NewLicenseService creates a new license service. A nil filter means names
// are sent as registered; a nil logger discards output.
func NewLicenseService(registry RecordLookup, gateway ports.LicenseGateway, filter ports.TitleFilter, logger ports.LoggingGateway) *LicenseService {
	if filter == nil {
		filter = filtering.IdentityFilter{}
	}
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	return &LicenseService{
		registry: registry,
		gateway:  gateway,
		filter:   filter,
		logger:   logger,
	}
}

// Validate activates license for pluginFile and returns the store's status
func (s *LicenseService) Validate(ctx context.Context, license, pluginFile string) domain.LicenseResult {
	return s.call(ctx, domain.ActionActivate, license, pluginFile)
}

// Check asks the store for the license status without activating it
func (s *LicenseService) Check(ctx context.Context, license, pluginFile string) domain.LicenseResult {
	return s.call(ctx, domain.ActionCheck, license, pluginFile)
}

// Deactivate releases the activation held by this site
func (s *LicenseService) Deactivate(ctx context.Context, license, pluginFile string) domain.LicenseResult {
	return s.call(ctx, domain.ActionDeactivate, license, pluginFile)
}

// GetLicenseStatus is Validate collapsed to (status, ok)
func (s *LicenseService) GetLicenseStatus(ctx context.Context, license, pluginFile string) (domain.LicenseStatus, bool) {
	return s.Validate(ctx, license, pluginFile).Lookup()
}

func (s *LicenseService) call(ctx context.Context, action domain.LicenseAction, license, pluginFile string) domain.LicenseResult {
	record, ok := s.registry.Lookup(pluginFile)
	if !ok {
		s.logger.LogDebug("License lookup for unregistered plugin", map[string]interface{}{
			"plugin": pluginFile,
		})
		return domain.FailedResult(domain.KindNotRegistered, fmt.Errorf("%s", pluginFile))
	}

	license = strings.TrimSpace(license)
	if license == "" {
		return domain.FailedResult(domain.KindEmptyLicense, nil)
	}

	result := s.gateway.Do(ctx, ports.LicenseRequest{
		APIURL:   record.APIURL,
		Action:   action,
		License:  license,
		ItemName: s.filter.Apply(record.ItemName(), 0),
	})

	fields := map[string]interface{}{
		"plugin": record.PluginID,
		"action": string(action),
	}
	if result.OK() {
		fields["status"] = string(result.Status)
		s.logger.LogInfo("License status received", fields)
	} else {
		fields["kind"] = string(result.Kind)
		s.logger.LogWarning("Could not determine license status", fields)
	}

	return result
}

// StatusReport is the outcome of refreshing one stored license
type StatusReport struct {
	OptionKey string
	PluginID  string
	Result    domain.LicenseResult
}

// RefreshStatuses validates every license recorded in the license-key index
// and stores each obtained status under "<optionKey>_status".
func (s *LicenseService) RefreshStatuses(ctx context.Context, index ports.LicenseKeyIndex, store ports.WritableSettingsStore) ([]StatusReport, error) {
	entries := index.Entries()

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reports := make([]StatusReport, 0, len(keys))
	for _, optionKey := range keys {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		pluginID := entries[optionKey]
		result := s.Validate(ctx, store.GetSetting(optionKey), pluginID)

		if status, ok := result.Lookup(); ok {
			if err := store.SetSetting(optionKey+StatusSettingSuffix, string(status)); err != nil {
				return reports, fmt.Errorf("failed to save status for %s: %w", optionKey, err)
			}
		}

		reports = append(reports, StatusReport{
			OptionKey: optionKey,
			PluginID:  pluginID,
			Result:    result,
		})
	}

	return reports, nil
}
