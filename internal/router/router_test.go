package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contactdesk/internal/config"
	"contactdesk/internal/domain/admin"
	"contactdesk/internal/domain/inquiry"
	"contactdesk/internal/domain/notification"
	"contactdesk/internal/infra/session"
	"contactdesk/internal/infra/store"
	"contactdesk/internal/infra/template"
	"contactdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkTransport struct {
	sent []*notification.Message
}

func (s *sinkTransport) Send(ctx context.Context, msg *notification.Message) (string, error) {
	s.sent = append(s.sent, msg)
	return "id", nil
}

func (s *sinkTransport) Name() string { return "sink" }

func newTestServer(t *testing.T) (*gin.Engine, *admin.Service, *sinkTransport) {
	t.Helper()
	require.NoError(t, inquiry.RegisterValidators())

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Session: config.SessionConfig{CookieName: "sid"},
	}

	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engine, err := template.NewEngine(cfg)
	require.NoError(t, err)

	transport := &sinkTransport{}
	dispatcher := notification.NewDispatcher(engine, transport, notification.DispatcherConfig{From: "desk@example.com"})
	notificationService := notification.NewService(dispatcher, db.DeliveryLogs())

	adminService := admin.NewService(db, session.NewMemoryStore(), time.Hour)
	inquiryService := inquiry.NewService(db, notificationService, nil, cfg, time.UTC)

	r := New(cfg,
		middleware.NewRateLimiter(100, 100),
		adminService,
		inquiry.NewHandler(inquiryService),
		admin.NewHandler(adminService, admin.CookieConfig{Name: "sid"}, false),
		notification.NewHandler(notificationService),
	)
	return r, adminService, transport
}

func serve(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := serve(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contactdesk")
}

func TestEndToEnd(t *testing.T) {
	r, adminService, transport := newTestServer(t)
	require.NoError(t, adminService.EnsureUser(context.Background(), "admin", "password1"))

	w := serve(r, http.MethodPost, "/api/contact", map[string]string{
		"name":    "山田太郎",
		"email":   "a@b.com",
		"message": "テスト",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "a@b.com", transport.sent[0].To)
	assert.Contains(t, transport.sent[0].Text, "山田太郎 様")

	w = serve(r, http.MethodGet, "/api/contacts", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/login", admin.Credentials{Username: "admin", Password: "password1"})
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	w = serve(r, http.MethodGet, "/api/contacts", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Data []inquiry.Inquiry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "山田太郎", list.Data[0].Name)

	w = serve(r, http.MethodGet, "/api/contacts/summary", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Data inquiry.WeeklySummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Len(t, summary.Data.Days, 7)
	assert.Equal(t, 1, summary.Data.Total)

	w = serve(r, http.MethodGet, "/api/notifications", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var deliveries struct {
		Data notification.ListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deliveries))
	require.Equal(t, 1, deliveries.Data.Total)
	assert.Equal(t, notification.StatusSent, deliveries.Data.Notifications[0].Status)
	assert.Equal(t, "a@b.com", deliveries.Data.Notifications[0].Recipient)
}
