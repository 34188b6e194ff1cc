package ledger

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/wallet"
)

// ContentType mirrors the contract's post classification.
type ContentType uint8

const (
	ContentFree ContentType = 0
	ContentPaid ContentType = 1
)

func (t ContentType) String() string {
	if t == ContentPaid {
		return "paid"
	}
	return "free"
}

// PostInfo is the decoded result of a getPostInfo read, with price
// converted back to human decimal units.
type PostInfo struct {
	ID          string
	Author      string
	ContentType ContentType
	Price       string
	Timestamp   time.Time
}

// Gateway adapts the active wallet session plus a contract handle into
// domain calls. One instantiation is valid at a time: every session
// transition tears the current gateway down and builds a replacement, so a
// gateway's session snapshot never goes stale while it lives.
type Gateway struct {
	session wallet.Session
	caller  Caller
	logger  *logging.ColoredLogger
}

// New builds a gateway for the given session. Sessions that are not
// connected, or whose wallet kind cannot drive the EVM ledger, fail closed.
func New(session wallet.Session, caller Caller, logger *logging.ColoredLogger) (*Gateway, error) {
	if !session.Connected {
		return nil, errors.NewGatewayUnavailableError("wallet not connected")
	}
	if session.Kind != wallet.KindMetaMask {
		return nil, errors.NewGatewayUnavailableError("unsupported wallet kind " + string(session.Kind))
	}
	if caller == nil {
		return nil, errors.NewGatewayUnavailableError("no contract handle")
	}
	return &Gateway{session: session, caller: caller, logger: logger}, nil
}

// Session returns the session snapshot this gateway was built for.
func (g *Gateway) Session() wallet.Session {
	if g == nil {
		return wallet.Session{}
	}
	return g.session
}

// SessionID returns the identity tag carried by every operation issued
// through this gateway.
func (g *Gateway) SessionID() string {
	return g.Session().ID
}

func (g *Gateway) guard() error {
	if g == nil || !g.session.Connected {
		return errors.NewGatewayUnavailableError("no active session")
	}
	return nil
}

// PublishFree issues a publish write with no payment attached and returns
// the ledger-assigned post ID.
func (g *Gateway) PublishFree(ctx context.Context, body string) (string, error) {
	if err := g.guard(); err != nil {
		return "", err
	}

	receipt, err := g.caller.Send(ctx, big.NewInt(0), methodPublishFree, body)
	if err != nil {
		return "", err
	}
	return postIDFromReceipt(receipt)
}

// PublishPaid converts price to base units and issues a publish write.
// Prices that parse to zero or below are rejected before anything is sent.
func (g *Gateway) PublishPaid(ctx context.Context, body, price string) (string, error) {
	if err := g.guard(); err != nil {
		return "", err
	}

	base, err := ToBase(price)
	if err != nil {
		return "", errors.NewInvalidAmountError(price)
	}
	if base.Sign() <= 0 {
		return "", errors.NewInvalidAmountError(price)
	}

	receipt, err := g.caller.Send(ctx, big.NewInt(0), methodPublishPaid, body, base)
	if err != nil {
		return "", err
	}
	return postIDFromReceipt(receipt)
}

// UserPosts lists the post IDs owned by the session account, as reported
// by the ledger.
func (g *Gateway) UserPosts(ctx context.Context) ([]string, error) {
	if err := g.guard(); err != nil {
		return nil, err
	}

	results, err := g.caller.Call(ctx, methodGetUserPosts, common.HexToAddress(g.session.Account))
	if err != nil {
		return nil, err
	}
	raw, ok := first(results).([]*big.Int)
	if !ok {
		return nil, errors.New("malformed getUserPosts result")
	}

	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id != nil {
			ids = append(ids, id.String())
		}
	}
	return ids, nil
}

// PostInfo reads a post's metadata, converting price back to decimal units.
func (g *Gateway) PostInfo(ctx context.Context, postID string) (*PostInfo, error) {
	if err := g.guard(); err != nil {
		return nil, err
	}
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}

	results, err := g.caller.Call(ctx, methodGetPostInfo, id)
	if err != nil {
		return nil, err
	}
	if len(results) != 4 {
		return nil, errors.New("malformed getPostInfo result")
	}

	author, ok1 := results[0].(common.Address)
	kind, ok2 := results[1].(uint8)
	price, ok3 := results[2].(*big.Int)
	ts, ok4 := results[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, errors.New("malformed getPostInfo result")
	}

	return &PostInfo{
		ID:          postID,
		Author:      wallet.FormatAddress(author.Hex()),
		ContentType: ContentType(kind),
		Price:       FromBase(price),
		Timestamp:   time.Unix(ts.Int64(), 0).UTC(),
	}, nil
}

// View performs the zero-value authorized read path. The ledger discloses
// content only to the author, to buyers, and for free posts.
func (g *Gateway) View(ctx context.Context, postID string) (string, error) {
	if err := g.guard(); err != nil {
		return "", err
	}
	id, err := parsePostID(postID)
	if err != nil {
		return "", err
	}

	results, err := g.caller.Call(ctx, methodViewContent, id)
	if err != nil {
		return "", err
	}
	content, ok := first(results).(string)
	if !ok {
		return "", errors.New("malformed viewContent result")
	}
	return content, nil
}

// Purchase performs the value-attached unlock write for a paid post, then
// retrieves the content through the authorized read path. A ledger report
// that the buyer already unlocked the post is treated as success, not an
// error; the read path still discloses the content.
func (g *Gateway) Purchase(ctx context.Context, postID, price string) (string, error) {
	if err := g.guard(); err != nil {
		return "", err
	}
	id, err := parsePostID(postID)
	if err != nil {
		return "", err
	}

	value, err := ToBase(price)
	if err != nil || value.Sign() <= 0 {
		return "", errors.NewInvalidAmountError(price)
	}

	if _, err := g.caller.Send(ctx, value, methodAccess, id); err != nil {
		if !isAlreadyUnlocked(err) {
			return "", err
		}
		g.logger.ComponentDebug(logging.ComponentLedger, "post already unlocked, skipping payment",
			zap.String("post_id", postID))
	}

	return g.View(ctx, postID)
}

// Withdraw transfers the accumulated balance owed to the session account.
// A zero balance is a ledger-defined no-op.
func (g *Gateway) Withdraw(ctx context.Context) (*TxReceipt, error) {
	if err := g.guard(); err != nil {
		return nil, err
	}

	receipt, err := g.caller.Send(ctx, big.NewInt(0), methodWithdraw)
	if err != nil {
		return nil, err
	}
	return summarizeReceipt(receipt), nil
}

var parsedABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(platformABI))
	if err != nil {
		panic("ledger: invalid platform ABI: " + err.Error())
	}
	return parsed
}

// postIDFromReceipt extracts the ledger-assigned post ID from the
// PostPublished event of a publish receipt.
func postIDFromReceipt(receipt *types.Receipt) (string, error) {
	if receipt == nil {
		return "", errors.New("publish receipt missing")
	}
	ev := parsedABI.Events[eventPostPublished]
	for _, log := range receipt.Logs {
		if log == nil || len(log.Topics) < 3 {
			continue
		}
		if log.Topics[0] != ev.ID {
			continue
		}
		return new(big.Int).SetBytes(log.Topics[2].Bytes()).String(), nil
	}
	return "", errors.New("publish receipt missing PostPublished event")
}

func parsePostID(postID string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(postID), 10)
	if !ok || id.Sign() < 0 {
		return nil, errors.NewValidationError("post_id", "malformed post identifier", postID)
	}
	return id, nil
}

func first(results []interface{}) interface{} {
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

func isAlreadyUnlocked(err error) bool {
	if !errors.IsTransactionRejected(err) {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "already")
}
