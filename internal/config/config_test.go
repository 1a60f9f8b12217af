package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadMergesUserAndProjectConfig(t *testing.T) {
	xdg := t.TempDir()
	cwd := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	userDir := filepath.Join(xdg, "annofabcli")
	require.NoError(t, EnsureDir(userDir))
	user := "endpoint_url: https://user.example.com\ntimeout_seconds: 5\nparallelism: 4\ncsv_format:\n  sep: \"\\t\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte(user), 0o600))
	project := "timeout_seconds: 30\nwait_max_tries: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".annofabcli.yaml"), []byte(project), 0o600))

	cfg, err := Load(cwd)
	require.NoError(t, err)
	assert.Equal(t, "https://user.example.com", cfg.EndpointURL)
	assert.Equal(t, 30, cfg.TimeoutSeconds, "project config overrides the user config")
	assert.Equal(t, 3, cfg.WaitMaxTries)
	assert.Equal(t, DefaultWaitIntervalSeconds, cfg.WaitIntervalSeconds)
	assert.Equal(t, DefaultLogDir, cfg.LogDir)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, "\t", cfg.CSVFormat["sep"])
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout_seconds: [\n"), 0o600))
	_, found, err := LoadConfig(path)
	assert.Error(t, err)
	assert.True(t, found)
}

func TestMergeConfig(t *testing.T) {
	base := Config{EndpointURL: "https://example.com", TimeoutSeconds: 5, LogDir: ".log", Parallelism: 2}
	override := Config{TimeoutSeconds: 10, LogDir: "logs"}
	merged := MergeConfig(base, override)
	assert.Equal(t, "https://example.com", merged.EndpointURL)
	assert.Equal(t, 10, merged.TimeoutSeconds)
	assert.Equal(t, "logs", merged.LogDir)
	assert.Equal(t, 2, merged.Parallelism)
}

func TestEnsureDir(t *testing.T) {
	require.NoError(t, EnsureDir(""))
	require.NoError(t, EnsureDir("."))

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveEndpointURL(t *testing.T) {
	cfg := Config{EndpointURL: "https://config.example.com"}
	env := envOf(map[string]string{EnvEndpointURL: "https://env.example.com"})
	assert.Equal(t, "https://flag.example.com", ResolveEndpointURL("https://flag.example.com", env, cfg), "flag wins")
	assert.Equal(t, "https://env.example.com", ResolveEndpointURL("", env, cfg), "env beats config")
	assert.Equal(t, "https://config.example.com", ResolveEndpointURL("", envOf(nil), cfg))
	assert.Empty(t, ResolveEndpointURL("", envOf(nil), Config{}))
}

func TestResolveCredentialsPrefersNetrc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netrc")
	content := "machine other.example.com login x password y\nmachine annofab.com login alice password secret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	env := envOf(map[string]string{EnvNetrc: path, EnvUserID: "bob", EnvPassword: "pw"})
	creds, err := ResolveCredentials("https://annofab.com", env)
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.UserID)
	assert.Equal(t, "secret", creds.Password)
	assert.Equal(t, "netrc", creds.Source)
}

func TestResolveCredentialsFallsBackToEnv(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	env := envOf(map[string]string{EnvNetrc: missing, EnvUserID: "bob", EnvPassword: "pw"})
	creds, err := ResolveCredentials("https://annofab.com", env)
	require.NoError(t, err)
	assert.Equal(t, "bob", creds.UserID)
	assert.Equal(t, "env", creds.Source)

	_, err = ResolveCredentials("", envOf(map[string]string{EnvNetrc: missing}))
	assert.ErrorIs(t, err, ErrNoCredentials)
}
