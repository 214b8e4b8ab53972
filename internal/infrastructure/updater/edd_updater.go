package updater

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"apppresser.com/updater/internal/core/domain"
)

// EDDUpdater is the handle for one plugin against an EDD software-licensing
// store. Version checks and package downloads are left to the host.
type EDDUpdater struct {
	apiURL     string
	pluginFile string
	slug       string
	version    string
	metadata   map[string]any
}

func (u *EDDUpdater) PluginFile() string { return u.pluginFile }
func (u *EDDUpdater) APIURL() string     { return u.apiURL }
func (u *EDDUpdater) Slug() string       { return u.slug }
func (u *EDDUpdater) Version() string    { return u.version }

// Metadata returns a copy of the data the updater was built with
func (u *EDDUpdater) Metadata() map[string]any {
	out := make(map[string]any, len(u.metadata))
	for k, v := range u.metadata {
		out[k] = v
	}
	return out
}

// EDDUpdaterFactory implements ports.UpdaterFactory
type EDDUpdaterFactory struct {
	once  sync.Once
	ready bool
	inits int
}

// NewEDDUpdaterFactory creates a factory. Init must run before New.
func NewEDDUpdaterFactory() *EDDUpdaterFactory {
	return &EDDUpdaterFactory{}
}

// Init marks the updater library as loaded. Repeated calls are no-ops.
func (f *EDDUpdaterFactory) Init() error {
	f.once.Do(func() {
		f.inits++
		f.ready = true
	})
	return nil
}

// Inits reports how many times the library was actually initialized
func (f *EDDUpdaterFactory) Inits() int {
	return f.inits
}

// New creates an updater handle for pluginFile
func (f *EDDUpdaterFactory) New(apiURL, pluginFile string, metadata map[string]any) (domain.UpdaterHandle, error) {
	if !f.ready {
		return nil, fmt.Errorf("updater library not initialized")
	}
	if strings.TrimSpace(pluginFile) == "" {
		return nil, fmt.Errorf("plugin file cannot be empty")
	}
	if strings.TrimSpace(apiURL) == "" {
		return nil, fmt.Errorf("api url cannot be empty for %s", pluginFile)
	}

	meta := make(map[string]any, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	version, _ := meta[domain.MetaVersion].(string)

	return &EDDUpdater{
		apiURL:     strings.TrimRight(apiURL, "/"),
		pluginFile: pluginFile,
		slug:       slugFromFile(pluginFile),
		version:    version,
		metadata:   meta,
	}, nil
}

func slugFromFile(pluginFile string) string {
	base := filepath.Base(strings.ReplaceAll(pluginFile, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
