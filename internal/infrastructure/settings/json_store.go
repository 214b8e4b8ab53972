package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// JSONStore keeps host settings in a JSON file and tracks the license-key
// index in memory. It implements ports.WritableSettingsStore and
// ports.LicenseKeyIndex.
type JSONStore struct {
	path        string
	settings    map[string]string
	licenseKeys map[string]string
	dirty       bool
	mutex       sync.RWMutex
}

type fileContents struct {
	Settings map[string]string `json:"settings"`
}

// NewMemoryStore creates a store that is never written to disk
func NewMemoryStore(initial map[string]string) *JSONStore {
	s := &JSONStore{
		settings:    make(map[string]string, len(initial)),
		licenseKeys: make(map[string]string),
	}
	for k, v := range initial {
		s.settings[k] = v
	}
	return s
}

// Open loads the store from path. A missing file yields an empty store.
func Open(path string) (*JSONStore, error) {
	s := NewMemoryStore(nil)
	s.path = path

	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	for k, v := range contents.Settings {
		s.settings[k] = v
	}

	return s, nil
}

// Path returns the backing file, "" for memory stores
func (s *JSONStore) Path() string {
	return s.path
}

// GetSetting returns the value for key, "" when unset
func (s *JSONStore) GetSetting(key string) string {
	if key == "" {
		return ""
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.settings[key]
}

// SetSetting stores value under key and persists the file
func (s *JSONStore) SetSetting(key, value string) error {
	if key == "" {
		return fmt.Errorf("setting key cannot be empty")
	}

	s.mutex.Lock()
	s.settings[key] = value
	s.dirty = true
	s.mutex.Unlock()

	return s.Save()
}

// Put records that optionKey holds the license for pluginID
func (s *JSONStore) Put(optionKey, pluginID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.licenseKeys[optionKey] = pluginID
}

// Entries returns a copy of the license-key index
func (s *JSONStore) Entries() map[string]string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[string]string, len(s.licenseKeys))
	for k, v := range s.licenseKeys {
		out[k] = v
	}
	return out
}

// Flush saves settings that a failed SetSetting left unwritten
func (s *JSONStore) Flush() error {
	s.mutex.RLock()
	dirty := s.dirty
	s.mutex.RUnlock()

	if !dirty {
		return nil
	}
	return s.Save()
}

// Save writes settings to disk. Memory stores are a no-op.
func (s *JSONStore) Save() error {
	if s.path == "" {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := json.MarshalIndent(fileContents{Settings: s.settings}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.dirty = false
	return nil
}
