package updater

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/core/domain"
	"apppresser.com/updater/internal/infrastructure/logging"
)

// Registry maps plugin identifiers to their updater records.
// It is safe for concurrent use.
type Registry struct {
	factory    ports.UpdaterFactory
	settings   ports.SettingsStore
	index      ports.LicenseKeyIndex
	logger     ports.LoggingGateway
	author     string
	storeURL   string
	pluginDirs []string

	records map[string]*domain.UpdaterRecord
	mu      sync.RWMutex
}

// RegistryOption customizes a Registry
type RegistryOption func(*Registry)

// WithAuthor overrides domain.DefaultAuthor
func WithAuthor(author string) RegistryOption {
	return func(r *Registry) {
		if author != "" {
			r.author = author
		}
	}
}

// WithStoreURL overrides domain.DefaultStoreURL
func WithStoreURL(url string) RegistryOption {
	return func(r *Registry) {
		if url != "" {
			r.storeURL = url
		}
	}
}

// WithPluginDirs sets the directories stripped when normalizing plugin paths
func WithPluginDirs(dirs ...string) RegistryOption {
	return func(r *Registry) {
		r.pluginDirs = append(r.pluginDirs, dirs...)
	}
}

// WithLogger attaches a logger
func WithLogger(logger ports.LoggingGateway) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry initializes the updater library and returns an empty registry
func NewRegistry(factory ports.UpdaterFactory, settings ports.SettingsStore, index ports.LicenseKeyIndex, opts ...RegistryOption) (*Registry, error) {
	if factory == nil {
		return nil, fmt.Errorf("updater factory is required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings store is required")
	}

	r := &Registry{
		factory:  factory,
		settings: settings,
		index:    index,
		logger:   logging.NewSilentLogger(),
		author:   domain.DefaultAuthor,
		storeURL: domain.DefaultStoreURL,
		records:  make(map[string]*domain.UpdaterRecord),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := factory.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize updater library: %w", err)
	}

	return r, nil
}

// PluginID normalizes a plugin path the same way Register does
func (r *Registry) PluginID(pluginFile string) string {
	return domain.PluginBasename(pluginFile, r.pluginDirs...)
}

// Register creates the updater record for pluginFile, replacing any
// previous record with the same identifier.
func (r *Registry) Register(pluginFile, optionKey string, apiData map[string]any) (*domain.UpdaterRecord, error) {
	pluginID := r.PluginID(pluginFile)
	if pluginID == "" {
		return nil, fmt.Errorf("plugin file %q does not resolve to an identifier", pluginFile)
	}

	if optionKey != "" && r.index != nil {
		r.index.Put(optionKey, pluginID)
	}

	meta := domain.MergeAPIData(apiData, map[string]any{
		domain.MetaAuthor:  r.author,
		domain.MetaURL:     r.storeURL,
		domain.MetaLicense: strings.TrimSpace(r.settings.GetSetting(optionKey)),
	})

	apiURL := domain.TakeString(meta, domain.MetaURL)

	handle, err := r.factory.New(apiURL, pluginFile, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create updater for %s: %w", pluginID, err)
	}

	record := &domain.UpdaterRecord{
		PluginID:   pluginID,
		PluginFile: pluginFile,
		APIURL:     apiURL,
		Updater:    handle,
	}
	record.Author = domain.TakeString(meta, domain.MetaAuthor)
	record.License = domain.TakeString(meta, domain.MetaLicense)
	record.Extra = meta

	r.mu.Lock()
	_, replaced := r.records[pluginID]
	r.records[pluginID] = record
	r.mu.Unlock()

	r.logger.LogDebug("Registered updater", map[string]interface{}{
		"plugin":   pluginID,
		"api_url":  apiURL,
		"replaced": replaced,
	})

	return record, nil
}

// Lookup finds the record for pluginFile, trying the string as given before
// its normalized form.
func (r *Registry) Lookup(pluginFile string) (*domain.UpdaterRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if record, ok := r.records[pluginFile]; ok {
		return record, true
	}
	if record, ok := r.records[domain.PluginBasename(pluginFile, r.pluginDirs...)]; ok {
		return record, true
	}
	return nil, false
}

// List returns all records ordered by plugin identifier
func (r *Registry) List() []*domain.UpdaterRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.UpdaterRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PluginID < out[j].PluginID })
	return out
}

// Len returns the number of registered plugins
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
