package wallet

import (
	"context"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/logging"
)

// SessionEventType categorizes session lifecycle notifications.
type SessionEventType string

const (
	SessionConnected      SessionEventType = "connected"
	SessionDisconnected   SessionEventType = "disconnected"
	SessionAccountChanged SessionEventType = "accountChanged"
	SessionNetworkChanged SessionEventType = "networkChanged"
)

// SessionEvent notifies downstream components of a session change.
type SessionEvent struct {
	Type    SessionEventType
	Session Session
}

// Manager owns the single live WalletSession. It connects and disconnects
// providers and relays their account/network change events, rotating the
// session identity on every change so stale in-flight results can be
// recognized and dropped.
type Manager struct {
	logger *logging.ColoredLogger

	mu        sync.RWMutex
	providers map[Kind]Provider
	watched   map[Kind]bool
	session   Session
	subs      []chan SessionEvent
}

// NewManager creates a session manager with no registered providers.
func NewManager(logger *logging.ColoredLogger) *Manager {
	return &Manager{
		logger:    logger,
		providers: make(map[Kind]Provider),
		watched:   make(map[Kind]bool),
	}
}

// Register makes a provider available for Connect. Registering a second
// provider of the same kind replaces the first; if the kind is already
// being watched, the replacement gets its own watch and the old
// provider's remaining events are dropped.
func (m *Manager) Register(p Provider) {
	m.mu.Lock()
	m.providers[p.Kind()] = p
	startWatch := m.watched[p.Kind()]
	m.mu.Unlock()

	if startWatch {
		go m.watch(p)
	}
}

// Connect requests account access from the named provider and, on success,
// populates the session and emits a connected notification. Failure leaves
// the session empty; there is no partial connected state.
func (m *Manager) Connect(ctx context.Context, kind Kind) (Session, error) {
	m.mu.Lock()
	provider, ok := m.providers[kind]
	m.mu.Unlock()
	if !ok {
		return Session{}, errors.NewProviderUnavailableError(string(kind), nil)
	}

	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		m.reset()
		return Session{}, err
	}
	if len(accounts) == 0 {
		m.reset()
		return Session{}, errors.NewUserRejectedError("account access")
	}

	networkID, err := provider.NetworkID(ctx)
	if err != nil {
		m.reset()
		return Session{}, errors.NewProviderUnavailableError(string(kind), err)
	}

	session := Session{
		ID:        uuid.NewString(),
		Account:   FormatAddress(accounts[0]),
		Kind:      kind,
		NetworkID: networkID,
		Connected: true,
	}

	m.mu.Lock()
	m.session = session
	startWatch := !m.watched[kind]
	if startWatch {
		m.watched[kind] = true
	}
	m.mu.Unlock()

	// Passive listeners start once per registered provider.
	if startWatch {
		go m.watch(provider)
	}

	m.logger.ComponentInfo(logging.ComponentWallet, "wallet connected",
		zap.String("kind", string(kind)),
		zap.String("account", session.Account),
		zap.Int64("network_id", networkID),
	)

	m.notify(SessionEvent{Type: SessionConnected, Session: session})
	return session, nil
}

// Disconnect clears the session. Providers generally do not support a
// forced disconnect, so this is a local-state reset only.
func (m *Manager) Disconnect() {
	m.reset()
	m.logger.ComponentInfo(logging.ComponentWallet, "wallet disconnected")
	m.notify(SessionEvent{Type: SessionDisconnected, Session: Session{}})
}

// Session returns a snapshot of the current session.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Balance fetches the base-unit balance for the connected account.
func (m *Manager) Balance(ctx context.Context) (*big.Int, error) {
	m.mu.RLock()
	session := m.session
	provider := m.providers[session.Kind]
	m.mu.RUnlock()

	if !session.Connected || provider == nil {
		return nil, errors.ErrNoSession
	}
	bal, err := provider.Balance(ctx, session.Account)
	if err != nil {
		return nil, errors.NewProviderUnavailableError(string(session.Kind), err)
	}
	return bal, nil
}

// Subscribe returns a channel of session events. Slow consumers miss
// events rather than blocking the manager.
func (m *Manager) Subscribe() <-chan SessionEvent {
	ch := make(chan SessionEvent, 16)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

func (m *Manager) reset() {
	m.mu.Lock()
	m.session = Session{}
	m.mu.Unlock()
}

func (m *Manager) notify(ev SessionEvent) {
	m.mu.RLock()
	subs := make([]chan SessionEvent, len(m.subs))
	copy(subs, m.subs)
	m.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Drop if the subscriber is slow to avoid blocking the manager.
		}
	}
}

// watch relays provider events into session updates for as long as the
// provider stays registered. Events from a provider that has since been
// replaced are dropped.
func (m *Manager) watch(provider Provider) {
	for ev := range provider.Events() {
		m.mu.RLock()
		current := m.providers[provider.Kind()] == provider
		m.mu.RUnlock()
		if !current {
			continue
		}
		switch ev.Type {
		case EventAccountsChanged:
			m.handleAccountsChanged(provider.Kind(), ev.Accounts)
		case EventChainChanged:
			m.handleChainChanged(provider.Kind(), ev.NetworkID)
		}
	}
}

func (m *Manager) handleAccountsChanged(kind Kind, accounts []string) {
	m.mu.Lock()
	if !m.session.Connected || m.session.Kind != kind {
		m.mu.Unlock()
		return
	}

	if len(accounts) == 0 {
		// Provider revoked access; equivalent to a disconnect.
		m.session = Session{}
		m.mu.Unlock()
		m.logger.ComponentWarn(logging.ComponentWallet, "provider revoked accounts")
		m.notify(SessionEvent{Type: SessionDisconnected, Session: Session{}})
		return
	}

	account := FormatAddress(accounts[0])
	if account == m.session.Account {
		m.mu.Unlock()
		return
	}

	m.session.Account = account
	m.session.ID = uuid.NewString()
	session := m.session
	m.mu.Unlock()

	m.logger.ComponentInfo(logging.ComponentWallet, "account changed",
		zap.String("account", account))
	m.notify(SessionEvent{Type: SessionAccountChanged, Session: session})
}

func (m *Manager) handleChainChanged(kind Kind, networkID int64) {
	m.mu.Lock()
	if !m.session.Connected || m.session.Kind != kind {
		m.mu.Unlock()
		return
	}
	if networkID == m.session.NetworkID {
		m.mu.Unlock()
		return
	}

	m.session.NetworkID = networkID
	m.session.ID = uuid.NewString()
	session := m.session
	m.mu.Unlock()

	// Contract addresses and units may differ per network, so downstream
	// treats this as a full reload of dependent state.
	m.logger.ComponentInfo(logging.ComponentWallet, "network changed",
		zap.Int64("network_id", networkID))
	m.notify(SessionEvent{Type: SessionNetworkChanged, Session: session})
}
