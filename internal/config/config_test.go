package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret-key-123")

	path := writeConfig(t, `
app:
  environment: test
database:
  path: ./data/test.db
api:
  port: 8085
  auth:
    enabled: true
    api_keys:
      - key: ${TEST_API_KEY}
        extra: extra-1
        name: website
        permissions: ["read:availability"]
schedule:
  open: "08:00"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lockwise", cfg.App.Name)
	assert.Equal(t, "./data/test.db", cfg.Database.Path)
	assert.Equal(t, 8085, cfg.API.Port)
	assert.Equal(t, "secret-key-123", cfg.API.Auth.APIKeys[0].Key)

	// Explicit values win, defaults fill the rest.
	assert.Equal(t, "08:00", cfg.Schedule.Open)
	assert.Equal(t, "17:00", cfg.Schedule.Close)
	assert.Equal(t, 60, cfg.Schedule.SlotMinutes)
	assert.Equal(t, 90, cfg.Schedule.MaxAdvanceDays)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "x-api-extra", cfg.API.Auth.HeaderExtra)
	assert.Greater(t, cfg.API.RateLimit.RPS, 0.0)
	assert.Equal(t, "configs/services.yaml", cfg.Catalog.Path)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name: "missing database path",
			content: `
api:
  port: 8080
`,
		},
		{
			name: "negative slot minutes",
			content: `
database:
  path: ./data/test.db
schedule:
  slot_minutes: -15
`,
		},
		{
			name: "auth enabled without keys",
			content: `
database:
  path: ./data/test.db
api:
  auth:
    enabled: true
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "app: [not: closed"))
	assert.Error(t, err)
}
