package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contactdesk/internal/common"
	"contactdesk/internal/domain/admin"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	users map[string]*admin.User
}

func (s *stubAuth) Authenticate(ctx context.Context, sessionID string) (*admin.User, error) {
	if u, ok := s.users[sessionID]; ok {
		return u, nil
	}
	return nil, common.NewUnauthorizedError(admin.MsgNotSignedIn)
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequireSession(t *testing.T) {
	auth := &stubAuth{users: map[string]*admin.User{"good": {ID: 1, Username: "admin"}}}

	r := newEngine()
	r.GET("/private", RequireSession(auth, "sid"), func(c *gin.Context) {
		user := c.MustGet(admin.ContextUserKey).(*admin.User)
		c.String(http.StatusOK, user.Username)
	})

	tests := []struct {
		name   string
		cookie string
		want   int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"unknown session", "bad", http.StatusUnauthorized},
		{"valid session", "good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sid", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	r := newEngine()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.8:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine()
	r.GET("/", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "fixed")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed", w.Header().Get("X-Request-ID"))
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	now = now.Add(time.Hour)
	assert.True(t, rl.allow("b"))

	assert.Equal(t, 1, rl.Prune(30*time.Minute))
	assert.Len(t, rl.visitors, 1)
}
