package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Drivers de armazenamento suportados.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	Storage StorageConfig `yaml:"storage"`
	Solana  SolanaConfig  `yaml:"solana"`
	Policy  PolicyConfig  `yaml:"policy"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
}

type SolanaConfig struct {
	RPCURL    string `yaml:"rpc_url"`
	WSURL     string `yaml:"ws_url"`
	ProgramID string `yaml:"program_id"`
	// Listener liga o espelhamento das transações do programa on-chain.
	Listener bool `yaml:"listener"`
}

// PolicyConfig decide as questões que o programa on-chain deixa em aberto.
// Os padrões (tudo falso) reproduzem o comportamento on-chain.
type PolicyConfig struct {
	StrictAuthorization bool `yaml:"strict_authorization"`
	RejectZeroAmount    bool `yaml:"reject_zero_amount"`
	FundEscrowOnMint    bool `yaml:"fund_escrow_on_mint"`
}

// DefaultConfig retorna a configuração padrão: memória, devnet e Policy desligada.
func DefaultConfig() *Config {
	return &Config{
		HTTPAddr: ":8080",
		LogLevel: "info",
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Solana: SolanaConfig{
			RPCURL:    "https://api.devnet.solana.com",
			WSURL:     "wss://api.devnet.solana.com",
			ProgramID: "FuAVoPCtaJWnJZVxE2ii4CtiqPwgvmxLE7gkGv5udmjQ",
		},
	}
}

// Load lê o arquivo YAML em path; se ele não existir, usa os padrões.
// Variáveis de ambiente têm precedência sobre o arquivo.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("falha ao interpretar arquivo de configuração: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("falha ao ler arquivo de configuração: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LEDGER_HTTP_ADDR":    &c.HTTPAddr,
		"LEDGER_LOG_LEVEL":    &c.LogLevel,
		"LEDGER_STORAGE":      &c.Storage.Driver,
		"LEDGER_DATABASE_URL": &c.Storage.DatabaseURL,
		"SOLANA_RPC_URL":      &c.Solana.RPCURL,
		"SOLANA_WS_URL":       &c.Solana.WSURL,
		"LEDGER_PROGRAM_ID":   &c.Solana.ProgramID,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"LEDGER_LISTENER":             &c.Solana.Listener,
		"LEDGER_STRICT_AUTHORIZATION": &c.Policy.StrictAuthorization,
		"LEDGER_REJECT_ZERO_AMOUNT":   &c.Policy.RejectZeroAmount,
		"LEDGER_FUND_ESCROW_ON_MINT":  &c.Policy.FundEscrowOnMint,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("valor inválido para %s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// Validate verifica combinações inválidas antes de subir o serviço.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url é obrigatório com o driver %q", StoragePostgres)
		}
	default:
		return fmt.Errorf("driver de armazenamento desconhecido: %q", c.Storage.Driver)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level inválido: %w", err)
	}
	if c.Solana.Listener && c.Solana.WSURL == "" {
		return fmt.Errorf("solana.ws_url é obrigatório com o listener ligado")
	}
	return nil
}
