package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "FuAVoPCtaJWnJZVxE2ii4CtiqPwgvmxLE7gkGv5udmjQ", cfg.Solana.ProgramID)
	assert.False(t, cfg.Solana.Listener)
	assert.Equal(t, PolicyConfig{}, cfg.Policy)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	content := `
http_addr: ":9090"
log_level: debug
storage:
  driver: postgres
  database_url: postgres://ledger@localhost/ledger?sslmode=disable
policy:
  fund_escrow_on_mint: true
  strict_authorization: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.True(t, cfg.Policy.FundEscrowOnMint)
	assert.True(t, cfg.Policy.StrictAuthorization)
	assert.False(t, cfg.Policy.RejectZeroAmount)
	// Campos ausentes mantêm o padrão
	assert.Equal(t, "https://api.devnet.solana.com", cfg.Solana.RPCURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_HTTP_ADDR", ":7000")
	t.Setenv("LEDGER_REJECT_ZERO_AMOUNT", "true")
	t.Setenv("SOLANA_RPC_URL", "http://localhost:8899")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.True(t, cfg.Policy.RejectZeroAmount)
	assert.Equal(t, "http://localhost:8899", cfg.Solana.RPCURL)
}

func TestLoad_InvalidEnvBool(t *testing.T) {
	t.Setenv("LEDGER_LISTENER", "talvez")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = StoragePostgres
	assert.Error(t, cfg.Validate(), "postgres sem database_url")

	cfg = DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Solana.Listener = true
	cfg.Solana.WSURL = ""
	assert.Error(t, cfg.Validate())
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
