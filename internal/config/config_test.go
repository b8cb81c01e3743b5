package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
api:
  environment: test
  port: "9090"
  base_url: localhost:9090
  allowed_cors_domains:
    - http://localhost:3000
  jwt_signing_key: 0123456789abcdef0123
gin:
  mode: test
storage:
  driver: memory
postgres:
  host: localhost
  port: "5432"
  user: santa
  password: santa
  db: santa
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, StorageMemory, conf.Storage.Driver)
	assert.Equal(t, "disable", conf.Postgres.SSLMode)
	assert.Equal(t, "./data", conf.Storage.Dir)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("API_PORT", "7070")

	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, conf.Storage.Driver)
	assert.Equal(t, "7070", conf.API.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "redis")

		_, err := Load(writeConfig(t, sampleConfig))
		assert.Error(t, err)
	})

	t.Run("short signing key", func(t *testing.T) {
		t.Setenv("API_JWT_SIGNING_KEY", "short")

		_, err := Load(writeConfig(t, sampleConfig))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}
