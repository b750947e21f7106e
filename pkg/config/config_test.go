package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TICTOC_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultTokenSecret, cfg.TokenSecret)
	assert.Equal(t, 0, cfg.TokenTTLSeconds)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 1000, cfg.UserListLimitMax)
	assert.Equal(t, 8, cfg.MinPasswordLength)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.Equal(t, time.Duration(0), cfg.TokenTTL())

	for _, name := range attributeNames() {
		assert.Equal(t, "default", cfg.Source(name), name)
	}
	require.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TICTOC_CONFIG_PATH", dir)
	writeConfigFile(t, dir, "token_secret: from-file\ntoken_ttl: 3600\nbcrypt_cost: 12\n")
	t.Setenv("TICTOC_BCRYPT_COST", "4")
	t.Setenv("TICTOC_USER_LIST_LIMIT_MAX", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.TokenSecret)
	assert.Equal(t, "file", cfg.Source("token_secret"))
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, "file", cfg.Source("token_ttl"))
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "environment", cfg.Source("bcrypt_cost"))
	assert.Equal(t, 50, cfg.UserListLimitMax)
	assert.Equal(t, "environment", cfg.Source("user_list_limit_max"))
	assert.Equal(t, "default", cfg.Source("min_password_length"))
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
}

func TestLoadIgnoresNonNumericEnvironment(t *testing.T) {
	t.Setenv("TICTOC_CONFIG_PATH", t.TempDir())
	t.Setenv("TICTOC_TOKEN_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.TokenTTLSeconds)
	assert.Equal(t, "default", cfg.Source("token_ttl"))
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TICTOC_CONFIG_PATH", dir)
	writeConfigFile(t, dir, "token_ttl: [not, a, number")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty secret", func(c *Config) { c.TokenSecret = "" }, true},
		{"negative ttl", func(c *Config) { c.TokenTTLSeconds = -1 }, true},
		{"cost too low", func(c *Config) { c.BcryptCost = 3 }, true},
		{"cost too high", func(c *Config) { c.BcryptCost = 32 }, true},
		{"zero list limit", func(c *Config) { c.UserListLimitMax = 0 }, true},
		{"zero password length", func(c *Config) { c.MinPasswordLength = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAttributesHideSecret(t *testing.T) {
	cfg := Default()
	cfg.TokenSecret = "hunter2"

	for _, attr := range cfg.Attributes() {
		assert.NotContains(t, attr.Value, "hunter2")
	}
	assert.NotContains(t, cfg.FormatText(), "hunter2")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")

	var decoded struct {
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Attributes, len(attributeNames()))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TICTOC_CONFIG_PATH", dir)
	t.Setenv("TICTOC_TOKEN_SECRET", "")
	writeConfigFile(t, dir, "token_ttl: 60\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, func(c *Config) {
			select {
			case changes <- c:
			default:
			}
		})
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeConfigFile(t, dir, "token_ttl: 120\n")

	// A single write can surface as several events; wait for the final content.
	deadline := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-changes:
			if cfg.TokenTTLSeconds == 120 {
				assert.Equal(t, "file", cfg.Source("token_ttl"))
				reloaded = true
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchNeverRevertsToDefaultSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	t.Setenv("TICTOC_CONFIG_PATH", dir)
	t.Setenv("TICTOC_TOKEN_SECRET", "")
	writeConfigFile(t, dir, "token_secret: prod-secret-1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	secrets := make(chan string, 256)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, func(c *Config) {
			select {
			case secrets <- c.TokenSecret:
			default:
			}
		})
	}()
	time.Sleep(100 * time.Millisecond)

	var received []string
	waitFor := func(want string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case got := <-secrets:
				received = append(received, got)
				if got == want {
					return
				}
			case <-deadline:
				t.Fatalf("no reload to %s observed, got %v", want, received)
			}
		}
	}

	for i := 0; i < 20; i++ {
		writeConfigFile(t, dir, "token_secret: prod-secret-2\n")
	}
	waitFor("prod-secret-2")

	require.NoError(t, os.Rename(path, path+"~"))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	writeConfigFile(t, dir, "token_secret: prod-secret-3\n")
	waitFor("prod-secret-3")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	for len(secrets) > 0 {
		received = append(received, <-secrets)
	}
	assert.NotContains(t, received, DefaultTokenSecret)
}

func TestSecretDowngraded(t *testing.T) {
	fromFile := Default()
	fromFile.TokenSecret = "prod"
	fromFile.sources["token_secret"] = "file"

	fromEnv := Default()
	fromEnv.TokenSecret = "prod"
	fromEnv.sources["token_secret"] = "environment"

	tests := []struct {
		name     string
		current  *Config
		next     *Config
		expected bool
	}{
		{"file to default", fromFile, Default(), true},
		{"environment to default", fromEnv, Default(), true},
		{"default to default", Default(), Default(), false},
		{"default to file", Default(), fromFile, false},
		{"file to file", fromFile, fromFile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, secretDowngraded(tt.current, tt.next))
		})
	}
}

func TestReloadSkipsMissingAndEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	t.Setenv("TICTOC_CONFIG_PATH", dir)
	t.Setenv("TICTOC_TOKEN_SECRET", "")
	current := Default()

	next, err := reload(path, current)
	assert.NoError(t, err)
	assert.Nil(t, next)

	writeConfigFile(t, dir, "")
	next, err = reload(path, current)
	assert.NoError(t, err)
	assert.Nil(t, next)

	writeConfigFile(t, dir, "bcrypt_cost: 99\n")
	_, err = reload(path, current)
	assert.Error(t, err)

	writeConfigFile(t, dir, "token_secret: rotated\n")
	next, err = reload(path, current)
	require.NoError(t, err)
	assert.Equal(t, "rotated", next.TokenSecret)
}
