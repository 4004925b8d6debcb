package misc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/middleware"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testRequestRateLimiter struct {
	// key to remaining allowance
	Limits map[string]int
}

func (l *testRequestRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	res := &redis_rate.Result{Limit: limit}
	remaining := l.Limits[key]
	if remaining <= 0 {
		res.RetryAfter = time.Second
		return res, nil
	}
	res.Allowed = 1
	l.Limits[key]--
	return res, nil
}

type testAuthService struct {
	loggedOut []string
}

func (s *testAuthService) Login(_ context.Context, creds auth.Credentials, createdAt time.Time) (*auth.LoginSession, error) {
	if creds.Username != "lifter" {
		return nil, auth.ErrUserNotFound
	}
	if creds.Password != "secret" {
		return nil, auth.ErrWrongPassword
	}
	return &auth.LoginSession{Token: "tkn-1", UserID: 5, CreatedAt: createdAt}, nil
}

func (s *testAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func setupRouter(t *testing.T, limiter *testRequestRateLimiter, authSvc *testAuthService) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	handler := NewHandler("v1.2.3", authSvc)
	handler.SetupRoutes(r, limiter, metrics.NewTestManager(), 10)
	return r
}

func TestHandler_RootHealthVersion(t *testing.T) {
	r := setupRouter(t, &testRequestRateLimiter{Limits: map[string]int{}}, &testAuthService{})

	for path, expected := range map[string]string{
		"/":        "liftlog",
		"/health":  `{"status":"ok"}`,
		"/version": "v1.2.3",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, expected, rr.Body.String(), path)
	}
}

func TestHandler_Login(t *testing.T) {
	limiter := &testRequestRateLimiter{Limits: map[string]int{"login:192.0.2.1": 3}}
	r := setupRouter(t, limiter, &testAuthService{})

	newReq := func(body string) *http.Request {
		req := httptest.NewRequest("POST", "/a/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newReq(`{"username":"lifter","password":"secret"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tkn-1", resp.Token)
	assert.Equal(t, 5, resp.UserID)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newReq(`{"username":"lifter","password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// form encoded
	form := url.Values{"username": {"lifter"}, "password": {""}}
	req := httptest.NewRequest("POST", "/a/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// allowance used up
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newReq(`{"username":"lifter","password":"secret"}`))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestHandler_Logout(t *testing.T) {
	authSvc := &testAuthService{}
	r := setupRouter(t, &testRequestRateLimiter{Limits: map[string]int{"login:192.0.2.1": 5}}, authSvc)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/a/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest("GET", "/a/logout", nil)
	req.Header.Set(middleware.TokenHeader, "tkn-1")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"tkn-1"}, authSvc.loggedOut)
}
