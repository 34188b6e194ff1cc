package wallet

import (
	"context"
	"math/big"
)

// EventType identifies a provider-originated change.
type EventType string

const (
	// EventAccountsChanged fires when the selected account set changes.
	EventAccountsChanged EventType = "accountsChanged"
	// EventChainChanged fires when the provider switches networks.
	EventChainChanged EventType = "chainChanged"
)

// Event is a passive notification emitted by a wallet provider.
type Event struct {
	Type      EventType
	Accounts  []string
	NetworkID int64
}

// Provider abstracts a wallet extension or local signer. Implementations
// surface user prompts as blocking calls and emit account/network changes
// on the Events channel for the lifetime of the process.
type Provider interface {
	// Kind identifies the provider family.
	Kind() Kind

	// RequestAccounts prompts for account access and returns the granted
	// accounts, first entry selected. Fails with a UserRejected error when
	// the user declines and ProviderUnavailable when the provider cannot
	// be reached.
	RequestAccounts(ctx context.Context) ([]string, error)

	// NetworkID reports the currently selected network.
	NetworkID(ctx context.Context) (int64, error)

	// Balance returns the base-unit balance of the given account.
	Balance(ctx context.Context, account string) (*big.Int, error)

	// Events returns the provider's change notification channel. The
	// manager subscribes to it exactly once per process lifetime.
	Events() <-chan Event
}
