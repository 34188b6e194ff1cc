package posts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/ledger"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/wallet"
)

// Reader is the ledger surface the synchronizer pulls posts through.
type Reader interface {
	UserPosts(ctx context.Context) ([]string, error)
	PostInfo(ctx context.Context, postID string) (*ledger.PostInfo, error)
	Session() wallet.Session
	SessionID() string
}

// refreshCall is one in-flight refresh shared by every caller that
// arrived while it was running.
type refreshCall struct {
	done  chan struct{}
	posts []Post
	err   error
}

// Synchronizer maintains the locally known post sequence for the active
// account, newest first. The sequence is replaced wholesale on each
// refresh; partial merges would expose stale price/author pairs.
type Synchronizer struct {
	logger *logging.ColoredLogger

	mu       sync.Mutex
	reader   Reader
	posts    []Post
	inflight *refreshCall
	timeout  time.Duration
}

const defaultRefreshTimeout = 60 * time.Second

// NewSynchronizer creates a synchronizer with no bound session.
func NewSynchronizer(logger *logging.ColoredLogger) *Synchronizer {
	return &Synchronizer{logger: logger, timeout: defaultRefreshTimeout}
}

// SetRefreshTimeout bounds the ledger reads behind one refresh. The
// platform wires the configured ledger call timeout here.
func (s *Synchronizer) SetRefreshTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// Bind points the synchronizer at a new ledger reader and clears any
// posts held for the previous session. Passing nil unbinds.
func (s *Synchronizer) Bind(reader Reader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reader = reader
	s.posts = nil
}

// Invalidate clears the post sequence. Used on disconnect and account
// change so nothing leaks across accounts.
func (s *Synchronizer) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = nil
}

// Posts returns a copy of the current sequence.
func (s *Synchronizer) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Get returns the post with the given identifier.
func (s *Synchronizer) Get(postID string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == postID {
			return p, nil
		}
	}
	return Post{}, errors.NewNotFoundError("post", postID)
}

// SetDisclosure updates a post's disclosure state in place.
func (s *Synchronizer) SetDisclosure(postID string, state DisclosureState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Disclosure = state
			return
		}
	}
}

// Refresh rebuilds the post sequence from the ledger. Concurrent calls
// collapse onto a single in-flight read batch; every caller receives
// the same resulting sequence. A result fetched under a session that
// has since rotated is discarded rather than applied.
func (s *Synchronizer) Refresh(ctx context.Context) ([]Post, error) {
	s.mu.Lock()
	if s.reader == nil {
		s.mu.Unlock()
		return nil, errors.NewGatewayUnavailableError("no active session")
	}
	if call := s.inflight; call != nil {
		s.mu.Unlock()
		return awaitRefresh(ctx, call)
	}

	call := &refreshCall{done: make(chan struct{})}
	s.inflight = call
	reader := s.reader
	tag := reader.SessionID()
	timeout := s.timeout
	s.mu.Unlock()

	go s.runRefresh(reader, tag, timeout, call)
	return awaitRefresh(ctx, call)
}

func awaitRefresh(ctx context.Context, call *refreshCall) ([]Post, error) {
	select {
	case <-call.done:
		return call.posts, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Synchronizer) runRefresh(reader Reader, tag string, timeout time.Duration, call *refreshCall) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fresh, err := fetchPosts(ctx, reader)

	s.mu.Lock()
	s.inflight = nil
	if err == nil && (s.reader == nil || s.reader.SessionID() != tag) {
		// The session rotated while the reads were in flight. The data
		// belongs to a superseded account or network and must not reach
		// the current sequence.
		err = errors.NewStaleSessionError(tag)
		s.logger.ComponentDebug(logging.ComponentSync, "discarding stale refresh result",
			zap.String("tag", tag))
	}
	if err == nil {
		s.posts = fresh
	}
	s.mu.Unlock()

	if err == nil {
		s.logger.ComponentInfo(logging.ComponentSync, "post sequence refreshed",
			zap.Int("posts", len(fresh)),
			zap.Duration("took", time.Since(start)),
		)
	} else if !errors.IsStaleSession(err) {
		s.logger.ComponentWarn(logging.ComponentSync, "refresh failed", zap.Error(err))
	}

	if err == nil {
		call.posts = fresh
	}
	call.err = err
	close(call.done)
}

// fetchPosts lists the account's post identifiers and resolves each to
// a Post, newest first. Any failed read fails the whole batch.
func fetchPosts(ctx context.Context, reader Reader) ([]Post, error) {
	ids, err := reader.UserPosts(ctx)
	if err != nil {
		return nil, err
	}

	viewer := reader.Session().Account
	fresh := make([]Post, 0, len(ids))
	// The contract appends post ids in publish order; walk backwards so
	// the newest post lands first.
	for i := len(ids) - 1; i >= 0; i-- {
		info, err := reader.PostInfo(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, fromInfo(*info, viewer))
	}
	return fresh, nil
}

// ApplyPublished optimistically prepends a post built from a just-sent
// publish call so the caller sees it before the next refresh confirms
// it. The next refresh replaces the preview with the ledger's view.
func (s *Synchronizer) ApplyPublished(info ledger.PostInfo) Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	viewer := ""
	if s.reader != nil {
		viewer = s.reader.Session().Account
	}
	p := fromInfo(info, viewer)
	p.Preview = true
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	s.posts = append([]Post{p}, s.posts...)
	return p
}
