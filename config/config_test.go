package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inexplicable/redis_checker/model"
	"github.com/inexplicable/redis_checker/store"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterPersistentFlags(flags)
	RegisterCheckFlags(flags)
	RegisterKeysFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, store.Target{Host: "127.0.0.1", Port: 6379}, cfg.Target())
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, OutputText, cfg.Output)
	assert.Equal(t, 5, cfg.Seconds)
	assert.Equal(t, "*", cfg.Pattern)
	assert.Equal(t, 0, cfg.Top)
	assert.Equal(t, ":", cfg.Prefix)
	assert.Equal(t, int64(100), cfg.Count)
	assert.Equal(t, 0.0, cfg.Rate)
	assert.Equal(t, model.DefaultThresholds(), cfg.Thresholds)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load(newFlags(t, "--host", "cache.local", "--port", "6380", "--seconds", "1",
		"--top", "20", "--db", "2", "--output", "JSON", "--timeout", "500ms"))
	require.NoError(t, err)

	assert.Equal(t, "cache.local", cfg.Host)
	assert.Equal(t, 6380, cfg.Port)
	assert.Equal(t, 2, cfg.Seconds, "window is clamped up to 2")
	assert.Equal(t, 20, cfg.Top)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout)

	options := cfg.StoreOptions(cfg.Target())
	assert.Equal(t, 2, options.DB)
	assert.Equal(t, "cache.local:6380", options.Addr())
}

func TestLoadClampsWindow(t *testing.T) {
	for _, seconds := range []string{"0", "1", "-4"} {
		cfg, err := Load(newFlags(t, "--seconds", seconds))
		require.NoError(t, err)
		assert.Equal(t, model.MinWindow, cfg.Seconds, "--seconds %s", seconds)
	}

	t.Setenv("REDIS_CHECKER_SECONDS", "0")
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, model.MinWindow, cfg.Seconds)
}

func TestLoadURL(t *testing.T) {
	cfg, err := Load(newFlags(t, "--url", "10.0.0.1:6390:secret", "--password", "ignored"))
	require.NoError(t, err)
	assert.Equal(t, store.Target{Host: "10.0.0.1", Port: 6390, Password: "secret"}, cfg.Target())

	_, err = Load(newFlags(t, "--url", "10.0.0.1:port"))
	assert.True(t, errors.Is(err, store.ErrParseAddress))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("REDIS_CHECKER_HOST", "from-env")
	t.Setenv("REDIS_CHECKER_CONSUL_SERVICE", "redis-main")
	t.Setenv("REDIS_CHECKER_THRESHOLDS_CONN_GAP", "7")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Host)
	assert.Equal(t, "redis-main", cfg.ConsulService)
	assert.Equal(t, int64(7), cfg.Thresholds.ConnGap)

	// a flag given on the command line wins over the environment
	cfg, err = Load(newFlags(t, "--host", "from-flag"))
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Host)
}

func TestLoadConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "checker.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: 7000
pattern: "user:*"
thresholds:
  keys-gap: 3
  max-clients-floor: 2000
`), 0o600))

	cfg, err := Load(newFlags(t, "--config", file))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "user:*", cfg.Pattern)
	assert.Equal(t, int64(3), cfg.Thresholds.KeysGap)
	assert.Equal(t, int64(2000), cfg.Thresholds.MaxClientsFloor)
	assert.Equal(t, model.DefaultThresholds().ConnGap, cfg.Thresholds.ConnGap)

	_, err = Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestLoadRejects(t *testing.T) {
	for _, args := range [][]string{
		{"--output", "xml"},
		{"--top", "-1"},
		{"--db", "-3"},
		{"--rate", "-0.5"},
	} {
		_, err := Load(newFlags(t, args...))
		assert.True(t, errors.Is(err, ErrInvalid), "%v should be rejected, got %v", args, err)
	}
}
