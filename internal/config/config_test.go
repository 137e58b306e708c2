package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeDotenv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, SubmitLog, cfg.SubmitMode)
	assert.Equal(t, "registrations", cfg.NATSSubject)
	assert.Equal(t, 10*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.False(t, cfg.StrictNav)
}

func TestLoad_DotenvUnderProcessEnv(t *testing.T) {
	path := writeDotenv(t, "REG_ADDR=:9000\nREG_STRICT_NAV=true\nREG_SUBMIT_TIMEOUT=3s\n")
	t.Setenv("REG_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr, "process env wins")
	assert.True(t, cfg.StrictNav)
	assert.Equal(t, 3*time.Second, cfg.SubmitTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("REG_SUBMIT_MODE", "nats")
	t.Setenv("REG_SUBMIT_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2, "missing url and bad timeout: %v", err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"log", Config{SubmitMode: SubmitLog, SubmitTimeout: time.Second}, false},
		{"http without url", Config{SubmitMode: SubmitHTTP, SubmitTimeout: time.Second}, true},
		{"http", Config{SubmitMode: SubmitHTTP, SubmitURL: "http://intake", SubmitTimeout: time.Second}, false},
		{"nats", Config{SubmitMode: SubmitNATS, NATSURL: "nats://localhost:4222", NATSSubject: "reg", SubmitTimeout: time.Second}, false},
		{"unknown mode", Config{SubmitMode: "kafka", SubmitTimeout: time.Second}, true},
		{"negative idle timeout", Config{SubmitMode: SubmitLog, SubmitTimeout: time.Second, IdleTimeout: -time.Second}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
