package login

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/config"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/roles"
	websess "github.com/bandesk/bandesk/internal/web/session"
)

// testStorage is a minimal in-memory implementation of storage.Storage.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[key], nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), val...)

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	require.NoError(t, db.AutoMigrate(&models.User{}))

	return db
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Webserver.URL = "http://localhost"
	cfg.Webserver.Port = 3000
	cfg.Webserver.Session.ExpiryTime = time.Minute

	return cfg
}

func setupLogin(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	app := fiber.New()

	websess.Init(&testStorage{data: make(map[string][]byte)})

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db))

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, target, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func TestPostSuccessSetsSessionCookie(t *testing.T) {
	app, db := setupLogin(t)

	_, err := auth.NewService(db).CreateUser(
		"bob", "bob@example.com", "s3cr3t", "Bob", "Doe", roles.RoleManager, nil)
	require.NoError(t, err)

	resp := postJSON(t, app, Path, `{"username":"bob","password":"s3cr3t"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sessionCookie *http.Cookie

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session" {
			sessionCookie = cookie
		}
	}

	require.NotNil(t, sessionCookie, "session cookie must be set")
	assert.NotEmpty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)
	assert.True(t, sessionCookie.Secure, "cookie is secure outside dev mode")

	// the session is readable under the issued id
	var data websess.Data
	require.NoError(t, data.Read(sessionCookie.Value))
	assert.Equal(t, "bob", data.User.Username)
}

func TestPostWrongPassword(t *testing.T) {
	app, db := setupLogin(t)

	_, err := auth.NewService(db).CreateUser(
		"bob", "bob@example.com", "s3cr3t", "Bob", "Doe", roles.RoleManager, nil)
	require.NoError(t, err)

	resp := postJSON(t, app, Path, `{"username":"bob","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}

func TestPostUnknownUser(t *testing.T) {
	app, _ := setupLogin(t)

	resp := postJSON(t, app, Path, `{"username":"nobody","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPostMalformedBody(t *testing.T) {
	app, _ := setupLogin(t)

	resp := postJSON(t, app, Path, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
