package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apppresser.com/updater/internal/core/domain"
	"apppresser.com/updater/internal/core/testfixtures"
	"apppresser.com/updater/internal/interfaces/cli"
	"apppresser.com/updater/internal/interfaces/di"
)

type testEnv struct {
	configPath   string
	settingsPath string
	store        *testfixtures.StoreServer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{
		"APPP_CONFIG_FILE", "APPP_STORE_URL", "APPP_AUTHOR", "APPP_SETTINGS_FILE",
		"APPP_PLUGINS_DIR", "APPP_TITLE_FILTERS", "APPP_REQUEST_TIMEOUT",
		"APPP_REQUEST_METHOD", "APPP_LOG_LEVEL", "APPP_DEBUG",
	} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	env := &testEnv{
		configPath:   filepath.Join(dir, "config.json"),
		settingsPath: filepath.Join(dir, "settings.json"),
		store:        testfixtures.NewValidStore(t),
	}

	config := map[string]any{
		"store_url":     env.store.URL,
		"title_filters": []string{"trim"},
		"plugins": []map[string]any{
			{
				"file":       "apppush/apppush.php",
				"option_key": "apppush_license",
				"api_data":   map[string]any{"item_name": " AppPush ", "version": "3.2.0"},
			},
			{
				"file":     "appcamera/appcamera.php",
				"api_data": map[string]any{"item_name": "AppCamera"},
			},
		},
	}
	data, err := json.Marshal(config)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(env.configPath, data, 0644))
	require.NoError(t, os.WriteFile(env.settingsPath, []byte(`{"settings":{"apppush_license":"stored-license-0001"}}`), 0600))

	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	container := di.NewContainer()
	container.LogOutput = io.Discard

	var out bytes.Buffer
	root := cli.NewRootCommand(container.GetCLIContainer())
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath, "--settings", e.settingsPath}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) settings(t *testing.T) map[string]string {
	t.Helper()
	data, err := os.ReadFile(e.settingsPath)
	require.NoError(t, err)

	var contents struct {
		Settings map[string]string `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(data, &contents))
	return contents.Settings
}

func TestPluginList(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "plugin", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Registered plugins (2)")
	assert.Contains(t, out, "apppush/apppush.php")
	assert.Contains(t, out, "appcamera/appcamera.php")
	assert.Contains(t, out, env.store.URL)
	assert.Contains(t, out, "stor...0001")
	assert.Contains(t, out, "(not set)")
	assert.NotContains(t, out, "stored-license-0001")
}

func TestPluginShow(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "plugin", "show", "apppush/apppush.php")
	require.NoError(t, err)
	assert.Contains(t, out, "Plugin file:")
	assert.Contains(t, out, domain.DefaultAuthor)
	assert.Contains(t, out, "3.2.0")

	_, err = env.run(t, "plugin", "show", "missing/missing.php")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestPluginRegister(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "plugin", "register", "appgeo/appgeo.php",
		"--option-key", "appgeo_license",
		"--item-name", "AppGeo",
		"--set", "beta=true",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered")
	assert.Contains(t, out, "appgeo/appgeo.php")

	out, err = env.run(t, "plugin", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered plugins (3)")
	assert.Contains(t, out, "AppGeo")

	out, err = env.run(t, "plugin", "register", "appgeo/appgeo.php", "--item-name", "AppGeo Pro")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated")

	out, err = env.run(t, "plugin", "show", "appgeo/appgeo.php")
	require.NoError(t, err)
	assert.Contains(t, out, "AppGeo Pro")
	assert.NotContains(t, out, "beta")
}

func TestPluginRegister_RejectsEmptyIdentifier(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "plugin", "register", "/")
	require.Error(t, err)
}

func TestLicenseValidate_UsesStoredLicense(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "license", "validate", "apppush/apppush.php")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	query := env.store.LastQuery(t)
	assert.Equal(t, "activate_license", query.Get("edd_action"))
	assert.Equal(t, "stored-license-0001", query.Get("license"))
	assert.Equal(t, "AppPush", query.Get("item_name"), "title filters apply to the item name")
	assert.Equal(t, http.MethodPost, env.store.LastMethod(t))
}

func TestLicenseValidate_ExplicitLicense(t *testing.T) {
	env := newTestEnv(t)
	env.store.Respond(http.StatusOK, `{"success":false,"license":"expired"}`)

	out, err := env.run(t, "license", "validate", "appcamera/appcamera.php", "  other-key  ")
	require.NoError(t, err)
	assert.Contains(t, out, "expired")

	query := env.store.LastQuery(t)
	assert.Equal(t, "other-key", query.Get("license"))
	assert.Equal(t, "AppCamera", query.Get("item_name"))
}

func TestLicenseActions(t *testing.T) {
	tests := []struct {
		command string
		action  string
	}{
		{"check", "check_license"},
		{"deactivate", "deactivate_license"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.run(t, "license", tt.command, "apppush/apppush.php")
			require.NoError(t, err)
			assert.Equal(t, tt.action, env.store.LastQuery(t).Get("edd_action"))
		})
	}
}

func TestLicenseValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		status  int
		body    string
		want    error
		network bool
	}{
		{
			name: "unregistered plugin",
			args: []string{"missing/missing.php", "key"},
			want: domain.ErrNotRegistered,
		},
		{
			name: "no stored license",
			args: []string{"appcamera/appcamera.php"},
			want: domain.ErrEmptyLicense,
		},
		{
			name:    "server error",
			args:    []string{"apppush/apppush.php"},
			status:  http.StatusInternalServerError,
			body:    "oops",
			want:    domain.ErrHTTPStatus,
			network: true,
		},
		{
			name:    "not json",
			args:    []string{"apppush/apppush.php"},
			status:  http.StatusOK,
			body:    "<html></html>",
			want:    domain.ErrMalformedResponse,
			network: true,
		},
		{
			name:    "no license field",
			args:    []string{"apppush/apppush.php"},
			status:  http.StatusOK,
			body:    `{"success":false}`,
			want:    domain.ErrMissingStatus,
			network: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.status != 0 {
				env.store.Respond(tt.status, tt.body)
			}

			out, err := env.run(t, append([]string{"license", "validate"}, tt.args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, out, "Could not determine license status")

			if tt.network {
				assert.Equal(t, 1, env.store.Calls())
			} else {
				assert.Zero(t, env.store.Calls())
			}
		})
	}
}

func TestLicenseSet(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "license", "set", "appcamera_license", "camera-key-9999")
	require.NoError(t, err)
	assert.Contains(t, out, "came...9999")
	assert.NotContains(t, out, "camera-key-9999")

	settings := env.settings(t)
	assert.Equal(t, "camera-key-9999", settings["appcamera_license"])
	assert.Equal(t, "stored-license-0001", settings["apppush_license"])
}

func TestLicenseRefresh(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "license", "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "apppush_license")
	assert.Contains(t, out, "valid")
	assert.Equal(t, 1, env.store.Calls(), "only plugins with an option key are refreshed")

	assert.Equal(t, "valid", env.settings(t)["apppush_license_status"])
}

func TestLicenseRefresh_KeepsPreviousStatusOnFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "license", "refresh")
	require.NoError(t, err)

	env.store.Respond(http.StatusBadGateway, "")
	out, err := env.run(t, "license", "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "http_status")

	assert.Equal(t, "valid", env.settings(t)["apppush_license_status"])
}

func TestRootFlags(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "--timeout=-1s", "plugin", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout cannot be negative")

	_, err = env.run(t, "--timeout", "2s", "--debug", "plugin", "list")
	require.NoError(t, err)
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Store URL: "+env.store.URL)
	assert.Contains(t, out, "Request: POST, timeout 15s")
	assert.Contains(t, out, "Title filters: trim")
	assert.Contains(t, out, "Declared plugins: 2")

	out, err = env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, env.configPath)
}
