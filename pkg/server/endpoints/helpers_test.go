package endpoints

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tictoc/tictoc/pkg/audit"
	"github.com/tictoc/tictoc/pkg/config"
	"github.com/tictoc/tictoc/pkg/server"
)

type testServer struct {
	*server.Server
	users  *MockUsersStore
	health *MockHealthStore
}

// newTestServer returns a server whose stores are testify mocks and whose
// endpoints are all registered.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.BcryptCost = bcrypt.MinCost

	s := server.NewServer(nil, cfg, "127.0.0.1", "0")
	users := &MockUsersStore{}
	health := &MockHealthStore{}
	s.UsersStore = users
	s.HealthStore = health

	RegisterAll(s)

	t.Cleanup(func() {
		users.AssertExpectations(t)
		health.AssertExpectations(t)
	})

	return &testServer{Server: s, users: users, health: health}
}

func (ts *testServer) do(method, target, body string, header ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "192.168.1.1:51234"
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	return rec
}

// captureAudit redirects the default audit logger for the duration of the test.
func captureAudit(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	audit.SetEnabled(true)
	audit.DefaultLogger.SetWriter(&buf)
	t.Cleanup(func() { audit.DefaultLogger.SetWriter(io.Discard) })
	return &buf
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}
