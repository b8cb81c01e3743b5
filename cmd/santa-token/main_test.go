package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/pkg/jwthelper"
)

const signingKey = "0123456789abcdef0123"

func writeConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  environment: test
  port: "8080"
  jwt_signing_key: `+signingKey+`
gin:
  mode: test
storage:
  driver: memory
`), 0o600))

	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestMint(t *testing.T) {
	token, err := execute("Ana", "--config", writeConfig(t), "--admin")
	require.NoError(t, err)

	claims, err := jwthelper.ParseToken([]byte(signingKey), token)
	require.NoError(t, err)
	assert.Equal(t, "Ana", claims.Subject)
	assert.True(t, claims.Admin)
}

func TestMint_Errors(t *testing.T) {
	path := writeConfig(t)

	_, err := execute("--config", path)
	assert.Error(t, err, "name is required")

	_, err = execute("Ana", "--config", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = execute("Ana", "--config", path, "--ttl", "forever")
	assert.Error(t, err)
}
