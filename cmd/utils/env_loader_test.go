package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_envFilePath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("empty when nothing is configured", func(t *testing.T) {
		os.Args = []string{"anchor-platform"}
		assert.Equal(t, "", envFilePath())
	})

	t.Run("reads ENV_FILE", func(t *testing.T) {
		os.Args = []string{"anchor-platform"}
		t.Setenv("ENV_FILE", "/etc/anchor/.env")
		assert.Equal(t, "/etc/anchor/.env", envFilePath())
	})

	t.Run("flag wins over ENV_FILE", func(t *testing.T) {
		t.Setenv("ENV_FILE", "/etc/anchor/.env")
		os.Args = []string{"anchor-platform", "--env-file", "/tmp/override.env"}
		assert.Equal(t, "/tmp/override.env", envFilePath())

		os.Args = []string{"anchor-platform", "--env-file=/tmp/inline.env"}
		assert.Equal(t, "/tmp/inline.env", envFilePath())
	})
}

func Test_LoadEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads variables from the configured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "service.env")
		require.NoError(t, os.WriteFile(path, []byte("ENV_LOADER_TEST_HORIZON_URL=https://horizon.example.com\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("ENV_LOADER_TEST_HORIZON_URL") })

		os.Args = []string{"anchor-platform", "--env-file", path}
		require.NoError(t, LoadEnvFile())

		assert.Equal(t, "https://horizon.example.com", os.Getenv("ENV_LOADER_TEST_HORIZON_URL"))
	})

	t.Run("missing configured file is an error", func(t *testing.T) {
		os.Args = []string{"anchor-platform", "--env-file", filepath.Join(t.TempDir(), "absent.env")}
		assert.ErrorContains(t, LoadEnvFile(), "loading env file")
	})

	t.Run("missing default .env is fine", func(t *testing.T) {
		os.Args = []string{"anchor-platform"}
		wd, err := os.Getwd()
		require.NoError(t, err)
		t.Cleanup(func() { _ = os.Chdir(wd) })
		require.NoError(t, os.Chdir(t.TempDir()))

		assert.NoError(t, LoadEnvFile())
	})
}
