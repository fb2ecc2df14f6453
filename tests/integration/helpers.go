package integration

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/client"
	"eventdesk/internal/mockapi"
	"eventdesk/internal/models"
	"eventdesk/internal/session"
)

// env bundles one in-process backend with one client session, the way a single
// user runs the app against a server.
type env struct {
	Server  *mockapi.Server
	BaseURL string
	API     *client.Client
	Session *session.Store
}

// startEnv boots the mock backend on an ephemeral port and wires a fresh
// client with its own session store against it.
func startEnv(t *testing.T) *env {
	t.Helper()

	server := mockapi.NewServer(mockapi.Config{GinMode: gin.TestMode})
	server.Seed()

	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	return attachClient(t, server, srv.URL)
}

// attachClient adds a second independent client session to the same backend.
func attachClient(t *testing.T, server *mockapi.Server, baseURL string) *env {
	t.Helper()

	store, err := session.Open(session.Config{
		Path: filepath.Join(t.TempDir(), "session.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open session store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &env{
		Server:  server,
		BaseURL: baseURL,
		API:     client.New(client.Config{BaseURL: baseURL}, store),
		Session: store,
	}
}

// login authenticates and records the session, failing the test on any error.
func (e *env) login(t *testing.T, email, password string) models.Session {
	t.Helper()

	sess, err := e.API.Auth().Login(context.Background(), models.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Login as %s failed: %v", email, err)
	}
	if err := e.Session.SetSession(sess); err != nil {
		t.Fatalf("Failed to store session: %v", err)
	}
	return sess
}

func LogTestStep(t *testing.T, step string, args ...interface{}) {
	t.Logf("STEP: "+step, args...)
}

func LogTestResult(t *testing.T, result string, args ...interface{}) {
	t.Logf("RESULT: "+result, args...)
}
