package platform

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/access"
	"github.com/CreonHQ/creon/pkg/config"
	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/ledger"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/posts"
	"github.com/CreonHQ/creon/pkg/storage"
	"github.com/CreonHQ/creon/pkg/wallet"
)

// EventType identifies a platform notification.
type EventType string

const (
	EventSession    EventType = "session"
	EventPosts      EventType = "posts"
	EventDisclosure EventType = "disclosure"
)

// Event is pushed to subscribers whenever platform state changes.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client wires the wallet session, ledger gateway, post synchronizer and
// access engine together. One Client serves one process; it holds at
// most one active session and one ledger gateway at a time.
type Client struct {
	cfg     *config.Config
	logger  *logging.ColoredLogger
	wallets *wallet.Manager
	pinner  storage.Pinner
	sealer  *storage.Sealer
	signers map[wallet.Kind]ledger.Signer

	sync   *posts.Synchronizer
	engine *access.Engine
	dial   dialFunc

	// rebuildMu serializes gateway rebuilds. Connect and the session
	// event goroutine both trigger rebuilds; without serialization a
	// slow dial for a superseded session could land after its
	// successor's and leave a stale gateway bound.
	rebuildMu sync.Mutex

	mu      sync.Mutex
	caller  ledgerConn
	gateway *ledger.Gateway
	subs    []chan Event
	closed  bool
}

// ledgerConn is a live contract connection. *ledger.EthCaller is the
// production implementation.
type ledgerConn interface {
	ledger.Caller
	Close()
}

type dialFunc func(ctx context.Context, cfg config.LedgerConfig, signer ledger.Signer) (ledgerConn, error)

// Options carries the collaborators a Client is built from. Signers maps
// a wallet kind to the transaction signer that can drive the ledger for
// it; kinds without a signer cannot build a gateway and fail closed.
type Options struct {
	Config  *config.Config
	Logger  *logging.ColoredLogger
	Wallets *wallet.Manager
	Pinner  storage.Pinner
	Sealer  *storage.Sealer
	Signers map[wallet.Kind]ledger.Signer
}

// NewClient builds the platform client and starts consuming wallet
// session events.
func NewClient(opts Options) *Client {
	c := &Client{
		cfg:     opts.Config,
		logger:  opts.Logger,
		wallets: opts.Wallets,
		pinner:  opts.Pinner,
		sealer:  opts.Sealer,
		signers: opts.Signers,
	}
	c.sync = posts.NewSynchronizer(opts.Logger)
	c.sync.SetRefreshTimeout(opts.Config.Ledger.CallTimeout)
	c.engine = access.NewEngine(c.sync, opts.Logger)
	c.dial = func(ctx context.Context, cfg config.LedgerConfig, signer ledger.Signer) (ledgerConn, error) {
		return ledger.Dial(ctx, cfg.RPCURL, cfg.ContractAddress, cfg.ChainID, signer)
	}

	go c.consumeSessionEvents(opts.Wallets.Subscribe())
	return c
}

// Connect opens a wallet session and builds the ledger gateway for it.
// The initial post refresh runs in the background; subscribers learn
// about it through a posts event.
func (c *Client) Connect(ctx context.Context, kind wallet.Kind) (wallet.Session, error) {
	session, err := c.wallets.Connect(ctx, kind)
	if err != nil {
		return wallet.Session{}, err
	}
	c.rebuild(ctx, session)
	go c.backgroundRefresh()
	return session, nil
}

// Disconnect clears the session. This is a local reset only; wallet
// providers have no revoke primitive.
func (c *Client) Disconnect() {
	c.wallets.Disconnect()
}

// Session returns the current wallet session.
func (c *Client) Session() wallet.Session {
	return c.wallets.Session()
}

// Balance returns the connected account's balance in decimal units.
func (c *Client) Balance(ctx context.Context) (string, error) {
	raw, err := c.wallets.Balance(ctx)
	if err != nil {
		return "", err
	}
	return ledger.FromBase(raw), nil
}

// Posts returns the locally known post sequence.
func (c *Client) Posts() []posts.Post {
	return c.sync.Posts()
}

// Refresh rebuilds the post sequence from the ledger. Disclosed content
// does not survive a from-scratch rebuild.
func (c *Client) Refresh(ctx context.Context) ([]posts.Post, error) {
	fresh, err := c.sync.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	c.engine.Reset()
	c.notify(Event{Type: EventPosts, Payload: fresh})
	return fresh, nil
}

// Withdraw transfers the connected author's accumulated earnings to
// their wallet.
func (c *Client) Withdraw(ctx context.Context) (*ledger.TxReceipt, error) {
	gw := c.currentGateway()
	if gw == nil {
		return nil, errors.NewGatewayUnavailableError("no active session")
	}
	return gw.Withdraw(ctx)
}

// Subscribe returns a channel of platform events. Slow subscribers drop
// events rather than block state transitions.
func (c *Client) Subscribe() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Event, 16)
	c.subs = append(c.subs, ch)
	return ch
}

// Close tears down the ledger connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.teardownLocked()
}

func (c *Client) currentGateway() *ledger.Gateway {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gateway
}

func (c *Client) notify(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// consumeSessionEvents reacts to wallet session transitions. Account and
// network changes are full reloads: the gateway is replaced and every
// piece of per-account state is rebuilt from the ledger.
func (c *Client) consumeSessionEvents(events <-chan wallet.SessionEvent) {
	for ev := range events {
		switch ev.Type {
		case wallet.SessionDisconnected:
			c.mu.Lock()
			c.teardownLocked()
			c.mu.Unlock()
			c.sync.Bind(nil)
			c.engine.Bind(nil)
		case wallet.SessionAccountChanged, wallet.SessionNetworkChanged:
			c.rebuild(context.Background(), ev.Session)
			go c.backgroundRefresh()
		}
		c.notify(Event{Type: EventSession, Payload: ev.Session})
	}
}

// rebuild replaces the ledger gateway for a new session. Any prior
// gateway is torn down first; a session that cannot drive the ledger
// leaves the platform with no gateway, and ledger-dependent operations
// fail closed until the next usable session.
func (c *Client) rebuild(ctx context.Context, session wallet.Session) {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	// The session this rebuild was queued for may already be superseded;
	// touching the gateway for it would tear down the successor's.
	if c.wallets.Session().ID != session.ID {
		return
	}

	c.mu.Lock()
	c.teardownLocked()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.sync.Bind(nil)
	c.engine.Bind(nil)

	signer, ok := c.signers[session.Kind]
	if !ok {
		c.logger.ComponentWarn(logging.ComponentClient, "wallet kind cannot drive the ledger",
			zap.String("kind", string(session.Kind)))
		return
	}

	caller, err := c.dial(ctx, c.cfg.Ledger, signer)
	if err != nil {
		c.logger.ComponentError(logging.ComponentClient, "failed to dial ledger", zap.Error(err))
		return
	}

	gw, err := ledger.New(session, caller, c.logger)
	if err != nil {
		caller.Close()
		c.logger.ComponentError(logging.ComponentClient, "failed to build ledger gateway", zap.Error(err))
		return
	}

	// The session can rotate while dialing; a gateway for the old
	// identity must never be committed or every later operation would
	// tag-match against it and apply the old account's state.
	c.mu.Lock()
	if c.closed || c.wallets.Session().ID != session.ID {
		c.mu.Unlock()
		caller.Close()
		return
	}
	c.caller = caller
	c.gateway = gw
	c.mu.Unlock()

	c.sync.Bind(gw)
	c.engine.Bind(gw)
	c.logger.ComponentInfo(logging.ComponentClient, "ledger gateway ready",
		zap.String("account", session.Account),
		zap.Int64("network", session.NetworkID),
	)
}

func (c *Client) teardownLocked() {
	if c.caller != nil {
		c.caller.Close()
	}
	c.caller = nil
	c.gateway = nil
}

func (c *Client) backgroundRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Ledger.CallTimeout)
	defer cancel()
	if _, err := c.Refresh(ctx); err != nil && !errors.IsStaleSession(err) && !errors.IsGatewayUnavailable(err) {
		c.logger.ComponentWarn(logging.ComponentClient, "background refresh failed", zap.Error(err))
	}
}
