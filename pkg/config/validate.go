package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "ledger.rpc_url"
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs validation of the entire config. It aggregates all
// errors so the caller can print every issue at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateWallet()...)
	errs = append(errs, c.validateLedger()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateGateway()...)

	return errs
}

func (c *Config) validateWallet() []error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.Wallet.Kind)) {
	case "", "metamask", "phantom", "keystore":
	default:
		errs = append(errs, ValidationError{
			Path:    "wallet.kind",
			Message: fmt.Sprintf("unknown wallet kind %q", c.Wallet.Kind),
			Hint:    "expected metamask, phantom or keystore",
		})
	}

	if strings.EqualFold(c.Wallet.Kind, "keystore") && strings.TrimSpace(c.Wallet.KeystorePath) == "" {
		errs = append(errs, ValidationError{
			Path:    "wallet.keystore_path",
			Message: "required when wallet.kind is keystore",
		})
	}

	return errs
}

func (c *Config) validateLedger() []error {
	var errs []error

	if err := validateURL(c.Ledger.RPCURL); err != nil {
		errs = append(errs, ValidationError{
			Path:    "ledger.rpc_url",
			Message: err.Error(),
			Hint:    "expected http(s):// or ws(s):// endpoint",
		})
	}

	addr := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Ledger.ContractAddress)), "0x")
	if addr != "" {
		if len(addr) != 40 {
			errs = append(errs, ValidationError{
				Path:    "ledger.contract_address",
				Message: "must be a 20-byte hex address",
			})
		} else if _, err := hex.DecodeString(addr); err != nil {
			errs = append(errs, ValidationError{
				Path:    "ledger.contract_address",
				Message: "must be hex encoded",
			})
		}
	}

	if c.Ledger.ChainID <= 0 {
		errs = append(errs, ValidationError{
			Path:    "ledger.chain_id",
			Message: "must be positive",
		})
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if err := validateURL(c.Storage.ClusterAPIURL); err != nil {
		errs = append(errs, ValidationError{
			Path:    "storage.cluster_api_url",
			Message: err.Error(),
		})
	}
	if c.Storage.APIURL != "" {
		if err := validateURL(c.Storage.APIURL); err != nil {
			errs = append(errs, ValidationError{
				Path:    "storage.api_url",
				Message: err.Error(),
			})
		}
	}

	if c.Storage.ReplicationFactor < 0 {
		errs = append(errs, ValidationError{
			Path:    "storage.replication_factor",
			Message: "must not be negative",
		})
	}

	if c.Storage.SealPaidContent {
		key := strings.TrimSpace(c.Storage.SealKeyHex)
		if decoded, err := hex.DecodeString(key); err != nil || len(decoded) != 32 {
			errs = append(errs, ValidationError{
				Path:    "storage.seal_key_hex",
				Message: "must be 32 bytes of hex when sealing is enabled",
			})
		}
	}

	return errs
}

func (c *Config) validateGateway() []error {
	var errs []error

	if strings.TrimSpace(c.Gateway.ListenAddr) == "" {
		errs = append(errs, ValidationError{
			Path:    "gateway.listen_addr",
			Message: "must not be empty",
			Hint:    "e.g., :6001",
		})
	}

	return errs
}

func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
