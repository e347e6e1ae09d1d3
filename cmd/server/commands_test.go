package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const memoryConfig = `
server:
  log_level: error
database:
  driver: memory
auth:
  jwt_secret: ` + testSecret + `
  token_lifetime: 1h
`

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	path := writeConfig(t, memoryConfig)
	userID := uuid.New()

	out, err := runCommand(t, "--config", path, "token", "--user", userID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "user_id: "+userID.String())

	var token string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "token: "); ok {
			token = rest
		}
	}
	require.NotEmpty(t, token)

	cfg := testConfig()
	svc, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenCommand_InvalidUser(t *testing.T) {
	path := writeConfig(t, memoryConfig)
	_, err := runCommand(t, "--config", path, "token", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --user")
}

func TestMigrateCommand(t *testing.T) {
	path := writeConfig(t, memoryConfig)

	_, err := runCommand(t, "--config", path, "migrate", "sideways")
	require.Error(t, err)

	_, err = runCommand(t, "--config", path, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres driver")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
