package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetSecret("test-secret")
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(Claims{UserID: 7, Role: "admin", Email: "a@b.com"}, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	expired, err := GenerateToken(Claims{UserID: 1}, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.Error(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte("other"))
	require.NoError(t, err)
	_, err = ValidateToken(foreign)
	assert.Error(t, err)
}

func newAuthRouter(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequireAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := CurrentClaims(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
	})
	r.GET("/x", handlers...)
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "garbage").Code)

	token, err := GenerateToken(Claims{UserID: 3, Role: "user"}, time.Hour)
	require.NoError(t, err)
	w := doGet(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter(RequireRole("Solo administradores", "admin", "superadmin"))

	user, _ := GenerateToken(Claims{UserID: 1, Role: "user"}, time.Hour)
	admin, _ := GenerateToken(Claims{UserID: 2, Role: "admin"}, time.Hour)

	w := doGet(r, user)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Solo administradores"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, doGet(r, admin).Code)
}

type fakeMaintenance struct {
	on  bool
	err error
}

func (f fakeMaintenance) MaintenanceMode(context.Context) (bool, error) { return f.on, f.err }

func TestMaintenance(t *testing.T) {
	user, _ := GenerateToken(Claims{UserID: 1, Role: "user"}, time.Hour)
	super, _ := GenerateToken(Claims{UserID: 2, Role: "superadmin"}, time.Hour)

	r := newAuthRouter(Maintenance(fakeMaintenance{on: true}))
	assert.Equal(t, http.StatusServiceUnavailable, doGet(r, user).Code)
	assert.Equal(t, http.StatusOK, doGet(r, super).Code)

	r = newAuthRouter(Maintenance(fakeMaintenance{err: errors.New("db down")}))
	assert.Equal(t, http.StatusOK, doGet(r, user).Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(2, 15*time.Minute)
	now := time.Now()

	assert.True(t, rl.allow("1.1.1.1", now))
	assert.True(t, rl.allow("1.1.1.1", now))
	assert.False(t, rl.allow("1.1.1.1", now))
	assert.True(t, rl.allow("2.2.2.2", now))

	// One token is refilled every window/n.
	assert.True(t, rl.allow("1.1.1.1", now.Add(8*time.Minute)))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
