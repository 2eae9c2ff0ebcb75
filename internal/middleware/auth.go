package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/fintera-assurance/internal/models"
)

const sessionKey = "session"

// Claims represents the JWT claims structure
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	LoginAt  int64  `json:"login_at"`
	jwt.RegisteredClaims
}

var (
	errSessionExpired = errors.New("session expirée, veuillez vous reconnecter")
	errInvalidToken   = errors.New("jeton invalide")
)

// Auth returns a middleware that validates JWT tokens and rebuilds the agent session.
// Sessions end at midnight in loc, whatever the token says.
func Auth(jwtSecret string, loc *time.Location) gin.HandlerFunc {
	return AuthWithClock(jwtSecret, loc, time.Now)
}

// AuthWithClock is Auth with an injectable clock
func AuthWithClock(jwtSecret string, loc *time.Location, now func() time.Time) gin.HandlerFunc {
	if loc == nil {
		loc = time.Local
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""

		if authHeader == "" {
			// Check query param for download links
			tokenString = c.Query("token")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Authorization header is required",
				})
				return
			}
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid authorization header format",
				})
				return
			}
			tokenString = parts[1]
		}

		current := now().In(loc)
		claims, err := validateToken(tokenString, jwtSecret, current)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		loginAt := time.Unix(claims.LoginAt, 0).In(loc)
		session := models.Session{
			Username:   claims.Username,
			IsAdmin:    claims.IsAdmin,
			LoginAt:    loginAt,
			LedgerDate: models.Day(loginAt),
		}
		if session.Expired(current) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": errSessionExpired.Error(),
			})
			return
		}

		c.Set(sessionKey, session)
		c.Set("userID", session.Username)
		c.Next()
	}
}

// validateToken parses and validates a JWT token string
func validateToken(tokenString, secret string, now time.Time) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errSessionExpired
		}
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" || claims.LoginAt == 0 {
		return nil, errInvalidToken
	}

	return claims, nil
}

// GetSession extracts the agent session from the Gin context
func GetSession(c *gin.Context) (models.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}

// SetSession stores a session on the context; used by tests and internal tooling
func SetSession(c *gin.Context, session models.Session) {
	c.Set(sessionKey, session)
	c.Set("userID", session.Username)
}

// IsAdmin checks if the current agent is an admin
func IsAdmin(c *gin.Context) bool {
	session, ok := GetSession(c)
	return ok && session.IsAdmin
}

// RequireAdmin returns a middleware that requires an admin session
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "accès réservé à l'administrateur",
			})
			return
		}
		c.Next()
	}
}
