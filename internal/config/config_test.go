package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.Polling.EmailSeconds = 300
	cfg.Polling.CheckpointSeconds = 600
	cfg.API.RatePerSec = 50
	cfg.API.Burst = 100
	return cfg
}

func TestLoadAndSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := validConfig()
	cfg.Email.Enabled = true
	cfg.Email.IMAPHost = "imap.gmail.com"
	cfg.Email.IMAPPort = 993
	cfg.Email.Username = "me@example.com"
	cfg.Email.Mailbox = "INBOX"
	cfg.Email.SearchSubjectAny = []string{"thank you for applying"}

	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	// second save keeps a .bak of the previous file
	cfg.App.Port = 38472
	require.NoError(t, SaveAtomic(path, cfg))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	cfg := validConfig()
	cfg.App.Port = 0
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.Error(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := validConfig()
	cfg.Email.Enabled = true
	cfg.Email.SearchSubjectAny = []string{" Thanks ", "thanks", "", "Application received"}

	out, vr := NormalizeAndValidate(cfg)

	// email enabled but host/port/username/mailbox missing
	assert.False(t, vr.OK())
	assert.Len(t, vr.Errors, 4)
	assert.Equal(t, []string{"Thanks", "Application received"}, out.Email.SearchSubjectAny)
}

func TestValidateRateLimits(t *testing.T) {
	cfg := validConfig()
	cfg.API.RatePerSec = 10
	cfg.API.Burst = 0
	_, vr := NormalizeAndValidate(cfg)
	assert.False(t, vr.OK())

	cfg.API.RatePerSec = 0
	_, vr = NormalizeAndValidate(cfg)
	assert.True(t, vr.OK())
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(defaultPath, []byte("app:\n  port: 38471\n"), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// user edits survive a second bootstrap
	require.NoError(t, os.WriteFile(userPath, []byte("app:\n  port: 40000\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, userPath, again)

	cfg, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, 40000, cfg.App.Port)
}
