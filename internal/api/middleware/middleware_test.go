package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/config"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
	"github.com/barak121-cloud/sim-management-bh/pkg/jwt"
	"github.com/barak121-cloud/sim-management-bh/pkg/kv"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessions() *session.Manager {
	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "middleware-test-secret", AccessTokenTTL: time.Hour})
	return session.NewManager(kv.NewMemory(), mgr, "test")
}

// ── SessionAuth ──

func TestSessionAuth(t *testing.T) {
	sessions := newSessions()
	_, token, err := sessions.Open(context.Background(), model.User{ID: "u1", Role: model.RoleInstructorJunior})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	r := gin.New()
	r.GET("/p", SessionAuth(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserID)+"|"+c.GetString(CtxRole))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"Missing", "", http.StatusUnauthorized},
		{"BadScheme", "Token " + token, http.StatusUnauthorized},
		{"Garbage", "Bearer nope", http.StatusUnauthorized},
		{"Valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && w.Body.String() != "u1|instructor_junior" {
				t.Errorf("unexpected context values %q", w.Body.String())
			}
		})
	}
}

func TestSessionAuth_ClosedSession(t *testing.T) {
	sessions := newSessions()
	ctx := context.Background()
	sess, token, _ := sessions.Open(ctx, model.User{ID: "u1", Role: model.RoleTrainee})
	_ = sessions.Close(ctx, sess.ID)

	r := gin.New()
	r.GET("/p", SessionAuth(sessions), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	build := func(role string) *gin.Engine {
		r := gin.New()
		r.GET("/p", func(c *gin.Context) {
			if role != "" {
				c.Set(CtxRole, role)
			}
		}, RoleAuth("admin", "staff"), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	for role, want := range map[string]int{
		"admin":   http.StatusOK,
		"staff":   http.StatusOK,
		"trainee": http.StatusForbidden,
		"":        http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		build(role).ServeHTTP(w, httptest.NewRequest("GET", "/p", nil))
		if w.Code != want {
			t.Errorf("role %q: expected %d, got %d", role, want, w.Code)
		}
	}
}

// ── RateLimit ──

type countingLimiter struct {
	calls int
	limit int
	err   error
}

func (l *countingLimiter) CheckRateLimit(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	l.calls++
	return l.calls <= l.limit, l.err
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 2}
	r := gin.New()
	r.POST("/login", RateLimit(limiter, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestRateLimit_DegradesOnError(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(&countingLimiter{err: errors.New("redis down")}, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected pass-through on limiter error, got %d", w.Code)
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 without limiter, got %d", w.Code)
		}
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/p", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc" || w.Header().Get("X-Request-ID") != "abc" {
		t.Errorf("expected incoming request id to be kept, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/p", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("expected generated uuid, got %q", w.Header().Get("X-Request-ID"))
	}
}

// ── BodyLimit / CORS / SecurityHeaders ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/p", BodyLimit(16), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/p", strings.NewReader(strings.Repeat("x", 32))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/p", strings.NewReader(`{"a":1}`)))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for small body, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://club.example/"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Origin", "https://club.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://club.example" {
		t.Errorf("expected origin to be allowed, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Error("expected Content-Disposition to be exposed")
	}

	req = httptest.NewRequest("OPTIONS", "/p", nil)
	req.Header.Set("Origin", "https://other.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("unexpected preflight result: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestSecurityHeaders_NoStoreOnAPI(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/api/v1/p", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/p", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store on api, got %q", w.Header().Get("Cache-Control"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Header().Get("Cache-Control") != "" || w.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("unexpected headers on /health: %v", w.Header())
	}
}
