package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/CreonHQ/creon/pkg/errors"
)

// BalanceSource is the subset of the ledger RPC needed to report balances.
// *ethclient.Client satisfies it.
type BalanceSource interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// KeystoreProvider is a development Provider backed by a secp256k1 key on
// disk. It stands in for the MetaMask extension so the full stack runs
// without a browser: account prompts auto-approve, and transactions are
// signed locally.
type KeystoreProvider struct {
	key       *ecdsa.PrivateKey
	address   common.Address
	networkID int64
	balances  BalanceSource

	events chan Event
}

// LoadKeystoreProvider loads the signing key at path, generating and
// persisting a fresh one when the file does not exist.
func LoadKeystoreProvider(path string, networkID int64, balances BalanceSource) (*KeystoreProvider, error) {
	path = expandHome(path)

	key, err := ethcrypto.LoadECDSA(path)
	if os.IsNotExist(err) {
		key, err = ethcrypto.GenerateKey()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate wallet key")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(err, "failed to create keystore directory")
		}
		if err := ethcrypto.SaveECDSA(path, key); err != nil {
			return nil, errors.Wrap(err, "failed to persist wallet key")
		}
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to load wallet key from %s", path)
	}

	return &KeystoreProvider{
		key:       key,
		address:   ethcrypto.PubkeyToAddress(key.PublicKey),
		networkID: networkID,
		balances:  balances,
		events:    make(chan Event, 8),
	}, nil
}

// Kind reports the provider family the keystore stands in for.
func (p *KeystoreProvider) Kind() Kind { return KindMetaMask }

// RequestAccounts auto-approves and returns the single local account.
func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{p.address.Hex()}, nil
}

// NetworkID reports the configured network.
func (p *KeystoreProvider) NetworkID(ctx context.Context) (int64, error) {
	return p.networkID, nil
}

// Balance fetches the account balance from the ledger RPC.
func (p *KeystoreProvider) Balance(ctx context.Context, account string) (*big.Int, error) {
	if p.balances == nil {
		return big.NewInt(0), nil
	}
	return p.balances.BalanceAt(ctx, common.HexToAddress(account), nil)
}

// Events returns the provider event channel.
func (p *KeystoreProvider) Events() <-chan Event {
	return p.events
}

// Address returns the local signing address.
func (p *KeystoreProvider) Address() common.Address {
	return p.address
}

// SignTx signs a ledger transaction with the local key.
func (p *KeystoreProvider) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), p.key)
}

// EmitChainChanged simulates a provider network switch.
func (p *KeystoreProvider) EmitChainChanged(networkID int64) {
	p.networkID = networkID
	p.events <- Event{Type: EventChainChanged, NetworkID: networkID}
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
