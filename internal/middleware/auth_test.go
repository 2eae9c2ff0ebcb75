package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, username string, admin bool, loginAt time.Time) string {
	t.Helper()
	session := models.Session{Username: username, IsAdmin: admin, LoginAt: loginAt}
	claims := jwt.MapClaims{
		"username": username,
		"is_admin": admin,
		"login_at": loginAt.Unix(),
		"iat":      loginAt.Unix(),
		"exp":      session.ExpiresAt().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthRouter(now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthWithClock(testSecret, time.UTC, func() time.Time { return now }))
	r.GET("/me", func(c *gin.Context) {
		session, _ := GetSession(c)
		c.JSON(http.StatusOK, gin.H{"username": session.Username, "day": session.LedgerDay()})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuth(t *testing.T) {
	loginAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		now        time.Time
		header     string
		query      string
		wantStatus int
	}{
		{
			name:       "valid bearer token",
			now:        loginAt.Add(2 * time.Hour),
			header:     "Bearer " + signToken(t, testSecret, "amel", false, loginAt),
			wantStatus: http.StatusOK,
		},
		{
			name:       "token in query string",
			now:        loginAt.Add(time.Minute),
			query:      signToken(t, testSecret, "amel", false, loginAt),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			now:        loginAt,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			now:        loginAt,
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			now:        loginAt,
			header:     "Bearer " + signToken(t, "other", "amel", false, loginAt),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "session from previous day",
			now:        time.Date(2025, 6, 16, 0, 5, 0, 0, time.UTC),
			header:     "Bearer " + signToken(t, testSecret, "amel", false, loginAt),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.now)
			url := "/me"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req, _ := http.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"day":"2025-06-15"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	loginAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	r := newAuthRouter(loginAt.Add(time.Hour))

	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "amel", false, loginAt))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "chef", true, loginAt))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		origins         []string
		method          string
		origin          string
		wantStatus      int
		wantAllowOrigin string
		wantCredentials string
	}{
		{"preflight from allowed origin", []string{"http://localhost:3000/"}, http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000", "true"},
		{"get from allowed origin", []string{"http://localhost:3000"}, http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000", "true"},
		{"unknown origin rejected", []string{"http://localhost:3000"}, http.MethodGet, "http://evil.example", http.StatusForbidden, "", ""},
		{"wildcard without credentials", []string{"*"}, http.MethodGet, "https://evil.example", http.StatusOK, "*", ""},
		{"empty list rejects cross origin", nil, http.MethodGet, "http://localhost:3000", http.StatusForbidden, "", ""},
		{"same origin request without header", []string{"http://localhost:3000"}, http.MethodGet, "", http.StatusOK, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

			req, _ := http.NewRequest(tt.method, "/ping", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req, _ = http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
