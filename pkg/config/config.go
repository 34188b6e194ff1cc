package config

import (
	"time"
)

// Config represents the main configuration for the platform
type Config struct {
	Wallet  WalletConfig  `yaml:"wallet"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	Gateway GatewayConfig `yaml:"gateway"`
	Logging LoggingConfig `yaml:"logging"`
}

// WalletConfig contains wallet provider configuration
type WalletConfig struct {
	// Kind selects the default provider: "metamask", "phantom" or "keystore"
	Kind string `yaml:"kind" envconfig:"CREON_WALLET_KIND"`

	// KeystorePath is the path to the local signing key used by the
	// keystore provider (development only)
	KeystorePath string `yaml:"keystore_path" envconfig:"CREON_WALLET_KEYSTORE_PATH"`
}

// LedgerConfig contains ledger (smart contract) configuration
type LedgerConfig struct {
	// RPCURL is the JSON-RPC endpoint of the ledger node
	RPCURL string `yaml:"rpc_url" envconfig:"CREON_LEDGER_RPC_URL"`

	// ContractAddress is the deployed content platform contract
	ContractAddress string `yaml:"contract_address" envconfig:"CREON_LEDGER_CONTRACT"`

	// ChainID identifies the expected network; operations against a node
	// reporting a different chain fail closed
	ChainID int64 `yaml:"chain_id" envconfig:"CREON_LEDGER_CHAIN_ID"`

	// CallTimeout bounds read calls; writes settle in provider time and are
	// bounded only by the caller's context
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// StorageConfig contains content-addressed storage configuration
type StorageConfig struct {
	// ClusterAPIURL is the IPFS Cluster HTTP API URL (e.g., "http://localhost:9094")
	ClusterAPIURL string `yaml:"cluster_api_url" envconfig:"CREON_STORAGE_CLUSTER_URL"`

	// APIURL is the IPFS HTTP API URL for content retrieval (e.g., "http://localhost:5001")
	APIURL string `yaml:"api_url" envconfig:"CREON_STORAGE_API_URL"`

	// Timeout for storage operations
	// If zero, defaults to 60 seconds
	Timeout time.Duration `yaml:"timeout"`

	// ReplicationFactor is the replication factor for pinned content
	// If zero, defaults to 3
	ReplicationFactor int `yaml:"replication_factor"`

	// SealPaidContent enables AEAD sealing of paid payloads before upload
	SealPaidContent bool `yaml:"seal_paid_content" envconfig:"CREON_STORAGE_SEAL_PAID"`

	// SealKeyHex is the 32-byte hex master key used when sealing is enabled
	SealKeyHex string `yaml:"seal_key_hex" envconfig:"CREON_STORAGE_SEAL_KEY"`
}

// GatewayConfig contains the HTTP gateway configuration
type GatewayConfig struct {
	ListenAddr string `yaml:"listen_addr" envconfig:"CREON_GATEWAY_ADDR"`

	// RequestTimeout bounds each HTTP request
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	EnableColors bool   `yaml:"enable_colors"`
	Level        string `yaml:"level"`
}

// Default returns a configuration with sane development defaults
func Default() *Config {
	return &Config{
		Wallet: WalletConfig{
			Kind:         "keystore",
			KeystorePath: "~/.creon/wallet.key",
		},
		Ledger: LedgerConfig{
			RPCURL:      "http://localhost:8545",
			ChainID:     1337,
			CallTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			ClusterAPIURL:     "http://localhost:9094",
			APIURL:            "http://localhost:5001",
			Timeout:           60 * time.Second,
			ReplicationFactor: 3,
		},
		Gateway: GatewayConfig{
			ListenAddr:     ":6001",
			RequestTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			EnableColors: true,
			Level:        "info",
		},
	}
}
