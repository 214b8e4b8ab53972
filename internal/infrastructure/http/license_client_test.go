package httpinfra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/core/domain"
)

func TestLicenseClient_ActivateContract(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"license":"valid","expires":"2025-01-01"}`))
	}))
	defer server.Close()

	client := NewLicenseClient(WithUserAgent("appp-updater/test"))
	result := client.Do(context.Background(), ports.LicenseRequest{
		APIURL:   server.URL,
		License:  "ABC-123",
		ItemName: "AppPush Pro & Co",
	})

	require.True(t, result.OK(), "unexpected error: %v", result.Err)
	assert.Equal(t, domain.LicenseValid, result.Status)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "activate_license", got.URL.Query().Get("edd_action"))
	assert.Equal(t, "ABC-123", got.URL.Query().Get("license"))
	assert.Equal(t, "AppPush Pro & Co", got.URL.Query().Get("item_name"))
	assert.Contains(t, got.URL.RawQuery, "item_name=AppPush+Pro+%26+Co")
	assert.Equal(t, "appp-updater/test", got.Header.Get("User-Agent"))
}

func TestLicenseClient_Actions(t *testing.T) {
	var action string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action = r.URL.Query().Get("edd_action")
		w.Write([]byte(`{"license":"deactivated"}`))
	}))
	defer server.Close()

	client := NewLicenseClient(WithMethod("get"))
	assert.Equal(t, http.MethodGet, client.Method())

	result := client.Do(context.Background(), ports.LicenseRequest{
		APIURL:  server.URL,
		Action:  domain.ActionDeactivate,
		License: "K",
	})
	require.True(t, result.OK())
	assert.Equal(t, "deactivate_license", action)
	assert.Equal(t, domain.LicenseDeactivated, result.Status)
}

func TestLicenseClient_PassesThroughUnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"license":"revoked_by_admin"}`))
	}))
	defer server.Close()

	status, ok := NewLicenseClient().Do(context.Background(), ports.LicenseRequest{APIURL: server.URL, License: "K"}).Lookup()
	assert.True(t, ok)
	assert.Equal(t, domain.LicenseStatus("revoked_by_admin"), status)
}

func TestLicenseClient_EmptyLicenseField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"license":""}`))
	}))
	defer server.Close()

	result := NewLicenseClient().Do(context.Background(), ports.LicenseRequest{APIURL: server.URL, License: "K"})

	require.True(t, result.OK(), "unexpected error: %v", result.Err)
	assert.Equal(t, domain.KindNone, result.Kind)
	assert.Equal(t, domain.LicenseStatus(""), result.Status)

	status, ok := result.Lookup()
	assert.True(t, ok, "a present field is a status even when empty")
	assert.Empty(t, status)
}

func TestLicenseClient_ResponseFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   domain.ErrorKind
	}{
		{"not json", http.StatusOK, "<html>maintenance</html>", domain.KindMalformedResponse},
		{"json array", http.StatusOK, `["valid"]`, domain.KindMalformedResponse},
		{"json null", http.StatusOK, `null`, domain.KindMalformedResponse},
		{"empty body", http.StatusOK, ``, domain.KindMalformedResponse},
		{"missing license field", http.StatusOK, `{"success":false}`, domain.KindMissingStatus},
		{"license is boolean", http.StatusOK, `{"license":false}`, domain.KindMissingStatus},
		{"license is null", http.StatusOK, `{"license":null}`, domain.KindMissingStatus},
		{"server error", http.StatusInternalServerError, `{"license":"valid"}`, domain.KindHTTPStatus},
		{"not found", http.StatusNotFound, `missing`, domain.KindHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result := NewLicenseClient().Do(context.Background(), ports.LicenseRequest{APIURL: server.URL, License: "K"})

			assert.False(t, result.OK())
			assert.Equal(t, tt.kind, result.Kind)
			assert.Error(t, result.Err)
			_, ok := result.Lookup()
			assert.False(t, ok)
		})
	}
}

func TestLicenseClient_TransportFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		result := NewLicenseClient().Do(context.Background(), ports.LicenseRequest{APIURL: addr, License: "K"})
		assert.Equal(t, domain.KindTransport, result.Kind)
		assert.ErrorIs(t, result.Err, domain.ErrTransport)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"license":"valid"}`))
		}))
		defer server.Close()

		client := NewLicenseClient(WithTimeout(20 * time.Millisecond))
		assert.Equal(t, 20*time.Millisecond, client.Timeout())

		result := client.Do(context.Background(), ports.LicenseRequest{APIURL: server.URL, License: "K"})
		assert.Equal(t, domain.KindTransport, result.Kind)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"license":"valid"}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := NewLicenseClient().Do(ctx, ports.LicenseRequest{APIURL: server.URL, License: "K"})
		assert.Equal(t, domain.KindTransport, result.Kind)
	})

	t.Run("bad url", func(t *testing.T) {
		result := NewLicenseClient().Do(context.Background(), ports.LicenseRequest{APIURL: "ftp://store.example.com", License: "K"})
		assert.Equal(t, domain.KindTransport, result.Kind)
	})
}

func TestBuildLicenseURL(t *testing.T) {
	tests := []struct {
		name    string
		apiURL  string
		wantErr string
		check   func(t *testing.T, u *url.URL)
	}{
		{
			name:   "plain host",
			apiURL: "http://appp.wpengine.com",
			check: func(t *testing.T, u *url.URL) {
				assert.Equal(t, "appp.wpengine.com", u.Host)
				assert.Equal(t, "activate_license", u.Query().Get("edd_action"))
			},
		},
		{
			name:   "keeps existing query",
			apiURL: "https://store.example.com/edd-sl?lang=en",
			check: func(t *testing.T, u *url.URL) {
				assert.Equal(t, "/edd-sl", u.Path)
				assert.Equal(t, "en", u.Query().Get("lang"))
				assert.Equal(t, "AppPush", u.Query().Get("item_name"))
			},
		},
		{name: "empty", apiURL: "  ", wantErr: "api url cannot be empty"},
		{name: "no scheme", apiURL: "store.example.com", wantErr: "unsupported URL scheme"},
		{name: "no host", apiURL: "https://", wantErr: "URL must include host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := BuildLicenseURL(tt.apiURL, domain.ActionActivate, "ABC-123", "AppPush")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "ABC-123", u.Query().Get("license"))
			tt.check(t, u)
		})
	}
}

func TestBuildLicenseURL_AppendsToExistingQuery(t *testing.T) {
	raw, err := BuildLicenseURL("https://store.example.com/edd-sl?b=2&a=1;x=3", domain.ActionCheck, "ABC 123", "AppPush & Co")
	require.NoError(t, err)

	assert.Equal(t,
		"https://store.example.com/edd-sl?b=2&a=1;x=3&edd_action=check_license&item_name=AppPush+%26+Co&license=ABC+123",
		raw)
}

func TestMaskLicense(t *testing.T) {
	assert.Equal(t, "", maskLicense(""))
	assert.Equal(t, "***", maskLicense("abc"))
	assert.Equal(t, "*****-123", maskLicense("ABCDE-123"))
}
