package config

import (
	"fmt"
	"strings"

	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/spf13/viper"
)

// LoadAgents reads the agent directory from path. The format follows the file
// extension (yaml, json, toml) and expects a top-level "agents" list:
//
//	agents:
//	  - username: Hamza
//	    password_hash: $2a$10$...
//	    admin: true
func LoadAgents(path string) ([]models.Agent, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read agents file %s: %w", path, err)
	}

	var agents []models.Agent
	if err := v.UnmarshalKey("agents", &agents); err != nil {
		return nil, fmt.Errorf("failed to decode agents: %w", err)
	}

	if len(agents) == 0 {
		return nil, fmt.Errorf("agents file %s defines no agents", path)
	}

	seen := make(map[string]bool, len(agents))
	for i, a := range agents {
		name := strings.TrimSpace(a.Username)
		if name == "" {
			return nil, fmt.Errorf("agent #%d has no username", i+1)
		}
		if a.PasswordHash == "" {
			return nil, fmt.Errorf("agent %s has no password_hash", name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("agent %s is defined twice", name)
		}
		seen[key] = true
		agents[i].Username = name
	}

	return agents, nil
}
