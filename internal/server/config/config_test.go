package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, ":50051", cfg.EndpointAddrGRPC)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, "access", cfg.AccessSubject)
	require.Equal(t, "refresh", cfg.RefreshSubject)
	require.Equal(t, cfg.AccessIssuer, cfg.RefreshIssuer)
	require.NotEmpty(t, cfg.KeyDir)
	require.Positive(t, cfg.ReconcilerPoll)
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("ACCOUNT_GRPC_ADDR", ":6000")
	t.Setenv("ACCOUNT_ACCESS_TOKEN_TTL", "90s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	require.Equal(t, ":6000", cfg.EndpointAddrGRPC)
	require.Equal(t, 90*time.Second, cfg.AccessTokenTTL)
	// untouched values keep their defaults
	require.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
}

func TestJsonConfig_Unmarshal(t *testing.T) {
	raw := `{
		"endpoint_addr_grpc": ":7000",
		"database_dsn": "postgres://u:p@h/db",
		"key_dir": "/tmp/keys",
		"access_token_ttl": "10m",
		"refresh_token_ttl": "48h",
		"access_issuer": "iss",
		"access_subject": "acc",
		"refresh_issuer": "iss",
		"refresh_subject": "ref",
		"reconciler_poll": "1s"
	}`

	c := &JsonConfig{}
	require.NoError(t, json.Unmarshal([]byte(raw), c))
	require.Equal(t, ":7000", c.EndpointAddrGRPC)
	require.Equal(t, 10*time.Minute, c.AccessTokenTTL.Duration)
	require.Equal(t, 48*time.Hour, c.RefreshTokenTTL.Duration)
	require.Equal(t, time.Second, c.ReconcilerPoll.Duration)
}

func TestParseJson_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_addr_grpc": ":7000",
		"database_dsn": "postgres://u:p@h/db",
		"key_dir": "/tmp/keys",
		"access_token_ttl": "10m",
		"refresh_token_ttl": "48h",
		"access_issuer": "iss",
		"access_subject": "acc",
		"refresh_issuer": "iss",
		"refresh_subject": "ref",
		"reconciler_poll": "1s"
	}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"test", "-c", path}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, ":7000", cfg.EndpointAddrGRPC)
	require.Equal(t, "/tmp/keys", cfg.KeyDir)
	require.Equal(t, 10*time.Minute, cfg.AccessTokenTTL)
}
