package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/user"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

const testSecret = "test-session-secret"

func captureUser(got **int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityResolvesKnownUser(t *testing.T) {
	store := memory.New()
	u, err := store.CreateUser(context.Background(), user.User{Email: "m@example.com", Name: "Member"})
	require.NoError(t, err)

	token, err := IssueToken(testSecret, u, time.Hour)
	require.NoError(t, err)

	var got *int64
	handler := NewIdentityMiddleware(testSecret, store, logger.Discard()).Handler(captureUser(&got))

	req := httptest.NewRequest(http.MethodPost, "/api/solutions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, *got)

	got = nil
	req = httptest.NewRequest(http.MethodPost, "/api/solutions", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, *got)
}

func TestIdentityFallsBackToAnonymous(t *testing.T) {
	store := memory.New()
	ghost := user.User{ID: 42, Role: user.RoleMember}
	unknownToken, err := IssueToken(testSecret, ghost, time.Hour)
	require.NoError(t, err)
	wrongSecret, err := IssueToken("other-secret", ghost, time.Hour)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	handler := NewIdentityMiddleware(testSecret, store, logger.Discard())
	for name, header := range map[string]string{
		"none":         "",
		"garbage":      "Bearer not-a-token",
		"basic":        "Basic dXNlcjpwYXNz",
		"unknown user": "Bearer " + unknownToken,
		"wrong secret": "Bearer " + wrongSecret,
		"expired":      "Bearer " + expired,
	} {
		got := new(int64)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.Handler(captureUser(&got)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.Nil(t, got, name)
	}
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", user.User{ID: 1}, time.Hour)
	assert.Error(t, err)
}

func TestRateLimiterOnlyCountsPosts(t *testing.T) {
	rl := NewRateLimiter(NewMemoryLimiter(1, 2), 1, logger.Discard())
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/solutions", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/solutions", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/solutions", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterExempt(t *testing.T) {
	rl := NewRateLimiter(NewMemoryLimiter(0.001, 1), 1, logger.Discard()).
		Exempt(func(r *http.Request) bool { return r.URL.Path == "/api/solution/1/view" })
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/solution/1/view", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/solutions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/solutions", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set; skipping redis limiter test")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	limiter := NewRedisLimiter(client, 2)
	key := "test-" + NewTraceID()
	ctx := context.Background()

	var allowed int
	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		if ok {
			allowed++
		}
	}
	// a window boundary may fall inside the loop
	assert.GreaterOrEqual(t, allowed, 2)
	assert.LessOrEqual(t, allowed, 4)
}

func TestLoggingMiddlewareSetsTraceHeader(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(TraceHeader))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "abc-123")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestLoggingMiddlewareRecordsOutcome(t *testing.T) {
	log := logger.New(logger.LoggingConfig{Level: "info"})
	log.SetOutput(io.Discard)
	hook := logtest.NewLocal(log.Logger)

	handler := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/register-event", nil)
	req.Header.Set(TraceHeader, "trace-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "trace-1", entry.Data["trace_id"])
	assert.Equal(t, "/api/register-event", entry.Data["path"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, []string{"duration_ms", "method", "path", "status", "trace_id"}, sortedKeys(entry.Data))
}

func sortedKeys(fields logrus.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, rec.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	handler := NewCORSMiddleware([]string{"https://innovatorsofhonour.com", " "}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/solutions", nil)
	req.Header.Set("Origin", "https://innovatorsofhonour.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://innovatorsofhonour.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/solutions", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
