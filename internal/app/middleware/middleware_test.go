package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/domain/services"
	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/internal/infrastructure/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuth(t *testing.T) services.InterfaceJWTService {
	t.Helper()
	jwtService := services.NewJWTService(&config.Config{JWTSecretKey: "test-secret", JWTExpiryHours: 1}, nil)
	InitAuthMiddleware(services.NewAccessPolicy(jwtService))
	return jwtService
}

func tokenFor(t *testing.T, jwtService services.InterfaceJWTService, id uint, role string) string {
	t.Helper()
	token, err := jwtService.GenerateToken(&models.User{BaseModel: models.BaseModel{ID: id}, Username: "u", Role: role})
	require.NoError(t, err)
	return token
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestExtractToken(t *testing.T) {
	assert.Equal(t, "abc", extractToken("Bearer abc"))
	assert.Equal(t, "abc", extractToken("bearer abc"))
	assert.Equal(t, "abc", extractToken("abc"))
	assert.Equal(t, "", extractToken(""))
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := setupAuth(t)
	userToken := tokenFor(t, jwtService, 3, models.RoleUser)
	adminToken := tokenFor(t, jwtService, 1, models.RoleAdmin)

	r := gin.New()
	echo := func(c *gin.Context) {
		identity := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"kind": identity.Kind.String(), "id": identity.UserID})
	}
	r.GET("/optional", OptionalAuthentication(), echo)
	r.GET("/auth", Authentication(), echo)
	r.GET("/admin", AuthenticateSystemAdmin(), echo)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
		wantCode   int
		wantKind   string
	}{
		{"optional anonymous", "/optional", "", http.StatusOK, 0, "anonymous"},
		{"optional garbage token", "/optional", "garbage", http.StatusOK, 0, "anonymous"},
		{"optional user", "/optional", userToken, http.StatusOK, 0, "user"},
		{"auth anonymous", "/auth", "", http.StatusUnauthorized, code.ErrTokenInvalid, ""},
		{"auth user", "/auth", userToken, http.StatusOK, 0, "user"},
		{"admin as user", "/admin", userToken, http.StatusForbidden, code.ErrForbidden, ""},
		{"admin anonymous", "/admin", "", http.StatusUnauthorized, code.ErrTokenInvalid, ""},
		{"admin as admin", "/admin", adminToken, http.StatusOK, 0, "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, decode(t, w).Code)
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body["kind"])
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/limited", IPRateLimiter(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/limited", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/limited", "").Code)

	w := perform(r, http.MethodGet, "/limited", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, code.ErrTooManyRequests, decode(t, w).Code)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	r := gin.New()
	r.GET("/a", CombinedRateLimiter(0.001, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRequest(http.MethodGet, "/a", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	second := httptest.NewRequest(http.MethodGet, "/a", nil)
	second.RemoteAddr = "10.0.0.2:1234"

	for _, req := range []*http.Request{first, second} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestLimiterStoreDropsIdleEntries(t *testing.T) {
	store := newLimiterStore(RateLimiterConfig{Rate: 1, Burst: 1, ExpiryTime: time.Millisecond})
	store.allow("a")
	store.allow("b")
	assert.Equal(t, 2, store.size())

	time.Sleep(5 * time.Millisecond)
	store.allow("c")
	assert.Equal(t, 1, store.size())
}

func TestCacheServesRepeatedRequests(t *testing.T) {
	PurgeCacheByPrefix("/")
	var calls int32

	r := gin.New()
	r.GET("/api/users", Cache(CacheConfig{Expiration: time.Minute}), func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		response.Success(c, n)
	})

	first := perform(r, http.MethodGet, "/api/users?b=2&a=1", "")
	second := perform(r, http.MethodGet, "/api/users?a=1&b=2", "")

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, CacheStats()["total_items"])

	PurgeCacheByPrefix("/api/users")
	perform(r, http.MethodGet, "/api/users?a=1&b=2", "")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCacheSkipsFailures(t *testing.T) {
	PurgeCacheByPrefix("/")
	var calls int32

	r := gin.New()
	r.GET("/broken", Cache(), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		response.ServerError(c)
	})

	perform(r, http.MethodGet, "/broken", "")
	perform(r, http.MethodGet, "/broken", "")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/x", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMetricsMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/things/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/things/:id", "200")
	before := testutil.ToFloat64(counter)

	perform(r, http.MethodGet, "/api/things/1", "")
	perform(r, http.MethodGet, "/api/things/2", "")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
