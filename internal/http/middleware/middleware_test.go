package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/domain"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const cookieName = "Task_Manager_Auth"

type fakeAuthenticator map[string]domain.Identity

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	switch token {
	case "expired":
		return domain.Identity{}, service.ErrTokenExpired
	case "broken":
		return domain.Identity{}, errors.New("store down")
	}
	id, ok := f[token]
	if !ok {
		return domain.Identity{}, domain.InvalidInput(domain.MsgInvalidToken)
	}
	return id, nil
}

func newRouter() (*gin.Engine, *Auth) {
	gin.SetMode(gin.TestMode)
	auth := NewAuth(fakeAuthenticator{
		"manager": {UserID: "m1", Role: domain.RoleManager},
		"member":  {UserID: "u1", Role: domain.RoleTeamMember},
	}, cookieName)

	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/any", auth.IsAuthenticated(), ok)
	r.GET("/manager", auth.IsAuthenticated(), auth.IsManager(), ok)
	r.GET("/owner/:id", auth.IsAuthenticated(), auth.IsOwner("id"), ok)
	r.GET("/noauth-manager", auth.IsManager(), ok)
	r.GET("/noauth-owner/:id", auth.IsOwner("id"), ok)
	return r, auth
}

func do(r http.Handler, path, token string) (int, string) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	msg, _ := body["Error"].(string)
	return w.Code, msg
}

func TestAuthorizationChain(t *testing.T) {
	r, _ := newRouter()

	cases := []struct {
		path, token string
		status      int
		msg         string
	}{
		{"/any", "", http.StatusForbidden, domain.MsgNoCredential},
		{"/any", "garbage", http.StatusBadRequest, domain.MsgInvalidToken},
		{"/any", "expired", http.StatusUnauthorized, domain.MsgTokenExpired},
		{"/any", "broken", http.StatusInternalServerError, domain.MsgInternal},
		{"/any", "member", http.StatusOK, ""},
		{"/manager", "", http.StatusForbidden, domain.MsgNoCredential},
		{"/manager", "garbage", http.StatusBadRequest, domain.MsgInvalidToken},
		{"/manager", "member", http.StatusForbidden, domain.MsgForbidden},
		{"/manager", "manager", http.StatusOK, ""},
		{"/owner/u1", "member", http.StatusOK, ""},
		{"/owner/u2", "member", http.StatusForbidden, domain.MsgForbidden},
		{"/owner/u1", "manager", http.StatusForbidden, domain.MsgForbidden},
		{"/noauth-manager", "", http.StatusBadRequest, domain.MsgInvalidSession},
		{"/noauth-owner/u1", "", http.StatusBadRequest, domain.MsgInvalidSession},
	}

	for _, tc := range cases {
		status, msg := do(r, tc.path, tc.token)
		if status != tc.status || msg != tc.msg {
			t.Fatalf("%s with %q: got %d %q, want %d %q", tc.path, tc.token, status, msg, tc.status, tc.msg)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.NotFound("Cannot find task"), http.StatusBadRequest, "Cannot find task"},
		{fmt.Errorf("wrapped: %w", domain.Forbidden("Forbidden")), http.StatusForbidden, "Forbidden"},
		{fmt.Errorf("auth: %w", service.ErrTokenExpired), http.StatusUnauthorized, domain.MsgTokenExpired},
		{errors.New("boom"), http.StatusInternalServerError, domain.MsgInternal},
	}
	for _, tc := range cases {
		status, msg := Classify(tc.err)
		if status != tc.status || msg != tc.msg {
			t.Fatalf("Classify(%v) = %d %q", tc.err, status, msg)
		}
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()), ErrorHandler(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	status, msg := do(r, "/panic", "")
	if status != http.StatusInternalServerError || msg != domain.MsgInternal {
		t.Fatalf("got %d %q", status, msg)
	}
}

func TestMemoryRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(nil, zap.NewNop())

	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/test", limiter.ByIP("test", config.RateLimit{Max: 2, Window: time.Minute}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		if status, _ := do(r, "/test", ""); status != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, status)
		}
	}
	status, msg := do(r, "/test", "")
	if status != http.StatusTooManyRequests || msg != "rate limit exceeded" {
		t.Fatalf("expected 429, got %d %q", status, msg)
	}
}

func TestIdentityRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, auth := newRouter()
	limiter := NewRateLimiter(nil, zap.NewNop())

	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/write", auth.IsAuthenticated(), limiter.ByIdentity("write", config.RateLimit{Max: 1, Window: time.Minute}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	if status, _ := do(r, "/write", "member"); status != http.StatusNoContent {
		t.Fatalf("first write: %d", status)
	}
	if status, _ := do(r, "/write", "member"); status != http.StatusTooManyRequests {
		t.Fatalf("second write by same user: %d", status)
	}
	// the limit is per identity, not per IP
	if status, _ := do(r, "/write", "manager"); status != http.StatusNoContent {
		t.Fatalf("other user's write: %d", status)
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	m := NewMemoryLimiter()
	now := time.Now()
	m.now = func() time.Time { return now }

	m.Incr("k", time.Second)
	if n := m.Incr("k", time.Second); n != 2 {
		t.Fatalf("count = %d", n)
	}
	now = now.Add(2 * time.Second)
	if n := m.Incr("k", time.Second); n != 1 {
		t.Fatalf("expected reset, count = %d", n)
	}
}
