package wallet

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/logging"
)

type fakeProvider struct {
	kind       Kind
	accounts   []string
	networkID  int64
	requestErr error
	events     chan Event
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		kind:      KindMetaMask,
		accounts:  []string{"0x1111111111111111111111111111111111111111"},
		networkID: 1337,
		events:    make(chan Event, 4),
	}
}

func (p *fakeProvider) Kind() Kind { return p.kind }

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	return p.accounts, nil
}

func (p *fakeProvider) NetworkID(ctx context.Context) (int64, error) {
	return p.networkID, nil
}

func (p *fakeProvider) Balance(ctx context.Context, account string) (*big.Int, error) {
	return big.NewInt(1e18), nil
}

func (p *fakeProvider) Events() <-chan Event { return p.events }

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	logger, err := logging.NewColoredLogger(logging.ComponentWallet, false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return NewManager(logger)
}

// waitSession polls until the manager's session satisfies cond.
func waitSession(t *testing.T, m *Manager, cond func(Session) bool) Session {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := m.Session(); cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session condition not met before deadline, session: %+v", m.Session())
	return Session{}
}

func TestConnectPopulatesSession(t *testing.T) {
	m := newTestManager(t)
	m.Register(newFakeProvider())

	session, err := m.Connect(context.Background(), KindMetaMask)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !session.Connected {
		t.Error("session not marked connected")
	}
	if session.ID == "" {
		t.Error("session identity tag missing")
	}
	if session.Account != "0x1111111111111111111111111111111111111111" {
		t.Errorf("account = %q", session.Account)
	}
	if session.NetworkID != 1337 {
		t.Errorf("networkID = %d", session.NetworkID)
	}
}

func TestConnectUnknownProvider(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Connect(context.Background(), KindPhantom); !errors.IsProviderUnavailable(err) {
		t.Errorf("expected ProviderUnavailable, got %v", err)
	}
}

func TestConnectFailsClosed(t *testing.T) {
	m := newTestManager(t)
	p := newFakeProvider()
	p.requestErr = errors.NewUserRejectedError("account access")
	m.Register(p)

	if _, err := m.Connect(context.Background(), KindMetaMask); !errors.IsUserRejected(err) {
		t.Fatalf("expected UserRejected, got %v", err)
	}
	if m.Session().Connected {
		t.Error("failed connect must leave the session empty")
	}
}

func TestDisconnectResetsSession(t *testing.T) {
	m := newTestManager(t)
	m.Register(newFakeProvider())
	if _, err := m.Connect(context.Background(), KindMetaMask); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	m.Disconnect()
	if m.Session().Connected {
		t.Error("session survived disconnect")
	}
}

func TestAccountChangeRotatesSessionID(t *testing.T) {
	m := newTestManager(t)
	p := newFakeProvider()
	m.Register(p)

	first, err := m.Connect(context.Background(), KindMetaMask)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	p.events <- Event{Type: EventAccountsChanged, Accounts: []string{"0x2222222222222222222222222222222222222222"}}
	session := waitSession(t, m, func(s Session) bool {
		return s.Account == "0x2222222222222222222222222222222222222222"
	})
	if session.ID == first.ID {
		t.Error("account change must rotate the session identity tag")
	}
	if !session.Connected {
		t.Error("account change must not disconnect")
	}
}

func TestEmptyAccountsDisconnects(t *testing.T) {
	m := newTestManager(t)
	p := newFakeProvider()
	m.Register(p)
	if _, err := m.Connect(context.Background(), KindMetaMask); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	p.events <- Event{Type: EventAccountsChanged, Accounts: nil}
	waitSession(t, m, func(s Session) bool { return !s.Connected })
}

func TestNetworkChangeRotatesSessionID(t *testing.T) {
	m := newTestManager(t)
	p := newFakeProvider()
	m.Register(p)

	first, err := m.Connect(context.Background(), KindMetaMask)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	p.events <- Event{Type: EventChainChanged, NetworkID: 1}
	session := waitSession(t, m, func(s Session) bool { return s.NetworkID == 1 })
	if session.ID == first.ID {
		t.Error("network change must rotate the session identity tag")
	}
}

func TestReplacingWatchedProviderSwitchesWatch(t *testing.T) {
	m := newTestManager(t)
	old := newFakeProvider()
	m.Register(old)
	if _, err := m.Connect(context.Background(), KindMetaMask); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	replacement := newFakeProvider()
	m.Register(replacement)

	// A replaced provider's events must no longer reach the session.
	old.events <- Event{Type: EventAccountsChanged, Accounts: []string{"0x2222222222222222222222222222222222222222"}}
	time.Sleep(50 * time.Millisecond)
	if acct := m.Session().Account; acct != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("replaced provider changed the session account to %s", acct)
	}

	replacement.events <- Event{Type: EventChainChanged, NetworkID: 5}
	waitSession(t, m, func(s Session) bool { return s.NetworkID == 5 })
}

func TestSubscribeObservesLifecycle(t *testing.T) {
	m := newTestManager(t)
	m.Register(newFakeProvider())
	events := m.Subscribe()

	if _, err := m.Connect(context.Background(), KindMetaMask); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	m.Disconnect()

	want := []SessionEventType{SessionConnected, SessionDisconnected}
	for _, wantType := range want {
		select {
		case ev := <-events:
			if ev.Type != wantType {
				t.Errorf("event = %s, want %s", ev.Type, wantType)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", wantType)
		}
	}
}

func TestBalanceRequiresSession(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Balance(context.Background()); !errors.IsGatewayUnavailable(err) {
		t.Errorf("expected no-session error, got %v", err)
	}
}
