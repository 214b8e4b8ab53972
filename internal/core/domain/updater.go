package domain

import (
	"sort"
)

// Defaults applied to every registration unless the caller overrides them
const (
	DefaultAuthor   = "AppPresser Team"
	DefaultStoreURL = "http://appp.wpengine.com"
)

// Metadata keys understood by the registry and the licensing API
const (
	MetaURL        = "url"
	MetaAuthor     = "author"
	MetaLicense    = "license"
	MetaItemName   = "item_name"
	MetaAPIURL     = "api_url"
	MetaPluginFile = "plugin_file"
	MetaVersion    = "version"
)

// UpdaterHandle is the opaque object produced by the updater library.
// The registry only keeps it for identity; record data lives on UpdaterRecord.
type UpdaterHandle interface {
	PluginFile() string
}

// UpdaterRecord holds everything resolved for one plugin at registration time
type UpdaterRecord struct {
	PluginID   string         `json:"plugin_id"`
	PluginFile string         `json:"plugin_file"`
	APIURL     string         `json:"api_url"`
	Author     string         `json:"author"`
	License    string         `json:"license"`
	Extra      map[string]any `json:"extra,omitempty"`

	Updater UpdaterHandle `json:"-"`
}

// ItemName returns the store item name used in licensing requests
func (r *UpdaterRecord) ItemName() string {
	return r.ExtraString(MetaItemName)
}

// ExtraString returns an extra field as a string. Numbers are formatted,
// anything else yields "".
func (r *UpdaterRecord) ExtraString(key string) string {
	if r == nil || r.Extra == nil {
		return ""
	}
	return stringify(r.Extra[key])
}

// Metadata returns the full resolved metadata, including api_url and
// plugin_file. The returned map is a copy.
func (r *UpdaterRecord) Metadata() map[string]any {
	meta := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		meta[k] = v
	}
	meta[MetaAuthor] = r.Author
	meta[MetaLicense] = r.License
	meta[MetaAPIURL] = r.APIURL
	meta[MetaPluginFile] = r.PluginFile
	return meta
}

// ExtraKeys returns the extra field names in sorted order
func (r *UpdaterRecord) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
