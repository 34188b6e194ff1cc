package access

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/ledger"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/posts"
	"github.com/CreonHQ/creon/pkg/wallet"
)

// ContentRecord holds disclosed plaintext for one post. It only ever
// lives in memory and dies with the session.
type ContentRecord struct {
	PostID      string    `json:"postId"`
	Content     string    `json:"content"`
	RetrievedAt time.Time `json:"retrievedAt"`
}

// Unlocker is the ledger surface the engine discloses content through.
// View is the zero-value authorized read path; Purchase attaches the
// post's price to the unlock transaction.
type Unlocker interface {
	View(ctx context.Context, postID string) (string, error)
	Purchase(ctx context.Context, postID, price string) (string, error)
	Session() wallet.Session
	SessionID() string
}

// Engine decides, per post, whether content may be disclosed, and
// drives the payment transaction when it is required. Per-post unlock
// writes are serialized by a pending guard so a post can never carry
// two in-flight payments.
type Engine struct {
	logger *logging.ColoredLogger
	sync   *posts.Synchronizer

	mu       sync.Mutex
	unlocker Unlocker
	pending  map[string]bool
	records  map[string]ContentRecord
}

// NewEngine creates an engine over the given synchronizer with no bound
// session.
func NewEngine(sync *posts.Synchronizer, logger *logging.ColoredLogger) *Engine {
	return &Engine{
		logger:  logger,
		sync:    sync,
		pending: make(map[string]bool),
		records: make(map[string]ContentRecord),
	}
}

// Bind points the engine at a new ledger unlocker and drops every
// record held for the previous session. Passing nil unbinds.
func (e *Engine) Bind(unlocker Unlocker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unlocker = unlocker
	e.records = make(map[string]ContentRecord)
	e.pending = make(map[string]bool)
}

// Reset discards all disclosed content. Called when the post sequence
// is rebuilt from scratch, keeping the denial-by-default stance.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = make(map[string]ContentRecord)
}

// Record returns the cached record for a post, if one exists.
func (e *Engine) Record(postID string) (ContentRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[postID]
	return rec, ok
}

// Disclose reveals a post's content to the active viewer. Free posts
// and the viewer's own posts go through the zero-value read path; other
// paid posts require a value-attached unlock transaction. An unlocked
// post returns its cached record without a ledger round trip unless
// force is set.
func (e *Engine) Disclose(ctx context.Context, postID string, force bool) (ContentRecord, error) {
	e.mu.Lock()
	if e.unlocker == nil {
		e.mu.Unlock()
		return ContentRecord{}, errors.NewGatewayUnavailableError("no active session")
	}
	if rec, ok := e.records[postID]; ok && !force {
		e.mu.Unlock()
		return rec, nil
	}

	post, err := e.sync.Get(postID)
	if err != nil {
		e.mu.Unlock()
		return ContentRecord{}, err
	}

	unlocker := e.unlocker
	viewer := unlocker.Session().Account
	tag := unlocker.SessionID()

	// An already-unlocked post re-fetches through the zero-value read
	// path. Payment has settled; attaching value again would double-pay.
	if post.ContentType == ledger.ContentFree ||
		wallet.EqualAddresses(post.Author, viewer) ||
		post.Disclosure == posts.StateUnlocked {
		e.mu.Unlock()
		return e.discloseFree(ctx, unlocker, tag, postID)
	}

	if e.pending[postID] {
		e.mu.Unlock()
		return ContentRecord{}, errors.NewOperationInProgressError(postID)
	}
	e.pending[postID] = true
	e.mu.Unlock()

	return e.disclosePaid(ctx, unlocker, tag, post)
}

// discloseFree runs the zero-value read path. No payment is ever
// attached here.
func (e *Engine) discloseFree(ctx context.Context, unlocker Unlocker, tag, postID string) (ContentRecord, error) {
	content, err := unlocker.View(ctx, postID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if stale := e.staleLocked(tag); stale != nil {
		return ContentRecord{}, stale
	}
	if err != nil {
		return ContentRecord{}, err
	}

	rec := e.storeLocked(postID, content)
	e.sync.SetDisclosure(postID, posts.StateUnlocked)
	return rec, nil
}

// disclosePaid drives the value-attached unlock. The post sits in
// Pending for the duration; any failure resolves it back to Locked.
func (e *Engine) disclosePaid(ctx context.Context, unlocker Unlocker, tag string, post posts.Post) (ContentRecord, error) {
	e.sync.SetDisclosure(post.ID, posts.StatePending)
	e.logger.ComponentInfo(logging.ComponentAccess, "unlocking paid post",
		zap.String("post", post.ID),
		zap.String("price", post.Price),
	)

	content, err := unlocker.Purchase(ctx, post.ID, post.Price)

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, post.ID)

	if stale := e.staleLocked(tag); stale != nil {
		e.sync.SetDisclosure(post.ID, posts.StateLocked)
		return ContentRecord{}, stale
	}
	if err != nil {
		e.sync.SetDisclosure(post.ID, posts.StateLocked)
		e.logger.ComponentWarn(logging.ComponentAccess, "unlock failed",
			zap.String("post", post.ID),
			zap.Error(err),
		)
		return ContentRecord{}, err
	}

	rec := e.storeLocked(post.ID, content)
	e.sync.SetDisclosure(post.ID, posts.StateUnlocked)
	return rec, nil
}

// staleLocked reports whether the session rotated while a ledger call
// was in flight. Stale results must never reach the new session's
// state. Caller holds e.mu.
func (e *Engine) staleLocked(tag string) error {
	if e.unlocker == nil || e.unlocker.SessionID() != tag {
		return errors.NewStaleSessionError(tag)
	}
	return nil
}

// storeLocked caches a disclosed record. Caller holds e.mu.
func (e *Engine) storeLocked(postID, content string) ContentRecord {
	rec := ContentRecord{
		PostID:      postID,
		Content:     content,
		RetrievedAt: time.Now().UTC(),
	}
	e.records[postID] = rec
	return rec
}
