package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REPORT_RECIPIENTS", " direction@agence.tn , ,compta@agence.tn")
	t.Setenv("LOCK_TTL_SECONDS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
	assert.Equal(t, []string{"direction@agence.tn", "compta@agence.tn"}, cfg.ReportRecipients)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, "Africa/Tunis", cfg.Location().String())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required in production")
}

func TestLoadAgents(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		file        string
		content     string
		expectError string
		expectCount int
	}{
		{
			name: "yaml directory",
			file: "agents.yaml",
			content: `agents:
  - username: Hamza
    password_hash: "$2a$10$abc"
    admin: true
  - username: " Ahlem "
    password_hash: "$2a$10$def"
`,
			expectCount: 2,
		},
		{
			name:        "json directory",
			file:        "agents.json",
			content:     `{"agents": [{"username": "Islem", "password_hash": "$2a$10$ghi"}]}`,
			expectCount: 1,
		},
		{
			name:        "empty directory",
			file:        "empty.yaml",
			content:     "agents: []\n",
			expectError: "defines no agents",
		},
		{
			name: "duplicate username",
			file: "dup.yaml",
			content: `agents:
  - username: Hamza
    password_hash: x
  - username: hamza
    password_hash: y
`,
			expectError: "defined twice",
		},
		{
			name: "missing hash",
			file: "nohash.yaml",
			content: `agents:
  - username: Hamza
`,
			expectError: "has no password_hash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			agents, err := LoadAgents(path)
			if tt.expectError != "" {
				assert.ErrorContains(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, agents, tt.expectCount)
		})
	}
}

func TestLoadAgents_TrimsAndKeepsAdminFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := "agents:\n  - username: \" Hamza \"\n    password_hash: h\n    admin: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	agents, err := LoadAgents(path)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "Hamza", agents[0].Username)
	assert.True(t, agents[0].IsAdmin)
}
