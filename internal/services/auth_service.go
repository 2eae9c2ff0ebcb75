package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates agents against the agent directory
type AuthService struct {
	agents    map[string]models.Agent
	jwtSecret []byte
	loc       *time.Location
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(agents []models.Agent, jwtSecret string, loc *time.Location) *AuthService {
	if loc == nil {
		loc = time.Local
	}
	byName := make(map[string]models.Agent, len(agents))
	for _, a := range agents {
		byName[strings.ToLower(a.Username)] = a
	}
	return &AuthService{
		agents:    byName,
		jwtSecret: []byte(jwtSecret),
		loc:       loc,
		now:       time.Now,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Session   models.Session `json:"session"`
}

// Login verifies the credentials and opens a session that ends at midnight
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	agent, ok := s.agents[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	session := models.NewSession(agent, s.now().In(s.loc))
	token, err := s.generateJWT(session)
	if err != nil {
		return nil, err
	}

	logger.Info("Agent logged in", "user", agent.Username, "admin", agent.IsAdmin, "ledger_date", session.LedgerDay())
	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt(),
		Session:   session,
	}, nil
}

// generateJWT signs the session claims; the token expires at the next midnight
func (s *AuthService) generateJWT(session models.Session) (string, error) {
	claims := jwt.MapClaims{
		"username": session.Username,
		"is_admin": session.IsAdmin,
		"login_at": session.LoginAt.Unix(),
		"exp":      session.ExpiresAt().Unix(),
		"iat":      session.LoginAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
