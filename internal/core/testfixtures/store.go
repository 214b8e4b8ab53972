package testfixtures

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// StoreServer is a fake EDD licensing endpoint. It records the query of
// every request and answers with a configurable status and body.
type StoreServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries []url.Values
	methods []string
	status  int
	body    string
}

// NewStoreServer starts a store answering status and body. It is closed
// when the test ends.
func NewStoreServer(t testing.TB, status int, body string) *StoreServer {
	t.Helper()

	s := &StoreServer{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// NewValidStore starts a store that reports every license as valid
func NewValidStore(t testing.TB) *StoreServer {
	return NewStoreServer(t, http.StatusOK, LicenseBody("valid"))
}

func (s *StoreServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.Query())
	s.methods = append(s.methods, r.Method)
	status, body := s.status, s.body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

// Respond changes the answer for later requests
func (s *StoreServer) Respond(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.body = status, body
}

// LastQuery returns the query of the latest request
func (s *StoreServer) LastQuery(t testing.TB) url.Values {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.queries, "no request reached the store")
	return s.queries[len(s.queries)-1]
}

// LastMethod returns the HTTP method of the latest request
func (s *StoreServer) LastMethod(t testing.TB) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.methods, "no request reached the store")
	return s.methods[len(s.methods)-1]
}

// Calls returns how many requests the store received
func (s *StoreServer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

// LicenseBody renders a store answer carrying status
func LicenseBody(status string) string {
	return fmt.Sprintf(`{"success":%t,"license":%q}`, status == "valid", status)
}
