package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedotone/landing-api/internal/log"
)

func TestValidateAutoMigrateAllowed(t *testing.T) {
	for _, env := range []string{"", "dev", "development", "local", "test", "testing", "DEV", "  Local  "} {
		assert.NoError(t, ValidateAutoMigrateAllowed(env), env)
	}

	for _, env := range []string{"prod", "production", "staging", " Production ", "qa"} {
		assert.Error(t, ValidateAutoMigrateAllowed(env), env)
	}
}

func TestEnvFiles(t *testing.T) {
	assert.Equal(t, []string{".env"}, envFiles(""))
	assert.Equal(t, []string{".env"}, envFiles(" , "))
	assert.Equal(t, []string{"base.env", "local.env"}, envFiles("base.env, local.env"))
}

func TestInitializeEnvFile_LoadsWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landing.env")
	require.NoError(t, os.WriteFile(path, []byte("DEMO_SESSION_TTL=7m\nWAITLIST_STORE=rest\n"), 0o600))

	t.Setenv("SKIP_DOTENV", "")
	t.Setenv("ENV_FILE", path)
	t.Setenv("WAITLIST_STORE", "postgres")
	t.Setenv("DEMO_SESSION_TTL", "")
	require.NoError(t, os.Unsetenv("DEMO_SESSION_TTL"))

	InitializeEnvFile(log.NewLoggerWithJSONOutput())

	assert.Equal(t, "7m", os.Getenv("DEMO_SESSION_TTL"))
	assert.Equal(t, "postgres", os.Getenv("WAITLIST_STORE"))
}

func TestInitializeEnvFile_Skip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landing.env")
	require.NoError(t, os.WriteFile(path, []byte("DEMO_MAX_SESSIONS=3\n"), 0o600))

	t.Setenv("SKIP_DOTENV", "true")
	t.Setenv("ENV_FILE", path)
	t.Setenv("DEMO_MAX_SESSIONS", "")
	require.NoError(t, os.Unsetenv("DEMO_MAX_SESSIONS"))

	InitializeEnvFile(log.NewLoggerWithJSONOutput())

	_, set := os.LookupEnv("DEMO_MAX_SESSIONS")
	assert.False(t, set)
}
