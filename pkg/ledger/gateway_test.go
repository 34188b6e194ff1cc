package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/wallet"
)

type sentCall struct {
	method string
	value  *big.Int
	args   []interface{}
}

type mockCaller struct {
	calls    []sentCall
	reads    []string
	results  map[string][]interface{}
	sendErr  map[string]error
	receipts map[string]*types.Receipt
}

func newMockCaller() *mockCaller {
	return &mockCaller{
		results:  make(map[string][]interface{}),
		sendErr:  make(map[string]error),
		receipts: make(map[string]*types.Receipt),
	}
}

func (m *mockCaller) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	m.reads = append(m.reads, method)
	return m.results[method], nil
}

func (m *mockCaller) Send(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Receipt, error) {
	m.calls = append(m.calls, sentCall{method: method, value: value, args: args})
	if err := m.sendErr[method]; err != nil {
		return nil, err
	}
	return m.receipts[method], nil
}

func publishReceipt(postID int64) *types.Receipt {
	ev := parsedABI.Events[eventPostPublished]
	return &types.Receipt{
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: big.NewInt(10),
		GasUsed:     21000,
		Logs: []*types.Log{{
			Topics: []common.Hash{
				ev.ID,
				common.HexToHash("0xabc"),
				common.BigToHash(big.NewInt(postID)),
			},
		}},
	}
}

func testSession() wallet.Session {
	return wallet.Session{
		ID:        "session-1",
		Account:   "0x1111111111111111111111111111111111111111",
		Kind:      wallet.KindMetaMask,
		NetworkID: 1337,
		Connected: true,
	}
}

func testGateway(t *testing.T, caller Caller) *Gateway {
	t.Helper()
	logger, err := logging.NewColoredLogger(logging.ComponentLedger, false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	gw, err := New(testSession(), caller, logger)
	if err != nil {
		t.Fatalf("failed to build gateway: %v", err)
	}
	return gw
}

func TestNewFailsClosed(t *testing.T) {
	logger, _ := logging.NewColoredLogger(logging.ComponentLedger, false)
	caller := newMockCaller()

	tests := []struct {
		name    string
		session wallet.Session
		caller  Caller
	}{
		{name: "disconnected", session: wallet.Session{}, caller: caller},
		{name: "unsupported kind", session: wallet.Session{Connected: true, Kind: wallet.KindPhantom}, caller: caller},
		{name: "nil caller", session: testSession(), caller: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.session, tt.caller, logger); !errors.IsGatewayUnavailable(err) {
				t.Errorf("expected GatewayUnavailable, got %v", err)
			}
		})
	}
}

func TestPublishFreeAttachesNoValue(t *testing.T) {
	caller := newMockCaller()
	caller.receipts[methodPublishFree] = publishReceipt(7)
	gw := testGateway(t, caller)

	postID, err := gw.PublishFree(context.Background(), "post data")
	if err != nil {
		t.Fatalf("PublishFree failed: %v", err)
	}
	if postID != "7" {
		t.Errorf("postID = %q, want 7", postID)
	}
	if len(caller.calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(caller.calls))
	}
	if caller.calls[0].value.Sign() != 0 {
		t.Errorf("free publish attached value %s", caller.calls[0].value)
	}
}

func TestPublishPaidRejectsNonPositivePrice(t *testing.T) {
	caller := newMockCaller()
	gw := testGateway(t, caller)

	for _, price := range []string{"0", "-1", "abc", ""} {
		if _, err := gw.PublishPaid(context.Background(), "data", price); !errors.IsInvalidAmount(err) {
			t.Errorf("price %q: expected InvalidAmount, got %v", price, err)
		}
	}
	if len(caller.calls) != 0 {
		t.Errorf("invalid prices must not reach the ledger, got %d writes", len(caller.calls))
	}
}

func TestPublishPaidConvertsPrice(t *testing.T) {
	caller := newMockCaller()
	caller.receipts[methodPublishPaid] = publishReceipt(3)
	gw := testGateway(t, caller)

	if _, err := gw.PublishPaid(context.Background(), "data", "0.01"); err != nil {
		t.Fatalf("PublishPaid failed: %v", err)
	}
	base := caller.calls[0].args[1].(*big.Int)
	if base.String() != "10000000000000000" {
		t.Errorf("price sent as %s base units, want 10000000000000000", base)
	}
}

func TestPurchaseAttachesValueThenReads(t *testing.T) {
	caller := newMockCaller()
	caller.receipts[methodAccess] = &types.Receipt{TxHash: common.HexToHash("0x02")}
	caller.results[methodViewContent] = []interface{}{"the content"}
	gw := testGateway(t, caller)

	content, err := gw.Purchase(context.Background(), "5", "0.01")
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if content != "the content" {
		t.Errorf("content = %q", content)
	}
	if len(caller.calls) != 1 || caller.calls[0].method != methodAccess {
		t.Fatalf("expected one accessContent write, got %+v", caller.calls)
	}
	if caller.calls[0].value.String() != "10000000000000000" {
		t.Errorf("unlock value = %s, want 0.01 in base units", caller.calls[0].value)
	}
	if len(caller.reads) != 1 || caller.reads[0] != methodViewContent {
		t.Errorf("expected a viewContent read after unlock, got %v", caller.reads)
	}
}

func TestPurchaseAlreadyUnlockedIsSuccess(t *testing.T) {
	caller := newMockCaller()
	caller.sendErr[methodAccess] = errors.NewTransactionRejectedError(methodAccess,
		errors.New("execution reverted: Content already purchased"))
	caller.results[methodViewContent] = []interface{}{"the content"}
	gw := testGateway(t, caller)

	content, err := gw.Purchase(context.Background(), "5", "0.01")
	if err != nil {
		t.Fatalf("already-unlocked must not fail: %v", err)
	}
	if content != "the content" {
		t.Errorf("content = %q", content)
	}
}

func TestViewAttachesNoValue(t *testing.T) {
	caller := newMockCaller()
	caller.results[methodViewContent] = []interface{}{"free content"}
	gw := testGateway(t, caller)

	content, err := gw.View(context.Background(), "1")
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if content != "free content" {
		t.Errorf("content = %q", content)
	}
	if len(caller.calls) != 0 {
		t.Errorf("view must never write, got %d writes", len(caller.calls))
	}
}

func TestPostInfoConvertsUnits(t *testing.T) {
	caller := newMockCaller()
	caller.results[methodGetPostInfo] = []interface{}{
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		uint8(ContentPaid),
		big.NewInt(0).Mul(big.NewInt(10), big.NewInt(1e15)),
		big.NewInt(1700000000),
	}
	gw := testGateway(t, caller)

	info, err := gw.PostInfo(context.Background(), "9")
	if err != nil {
		t.Fatalf("PostInfo failed: %v", err)
	}
	if info.Price != "0.01" {
		t.Errorf("price = %q, want 0.01", info.Price)
	}
	if info.ContentType != ContentPaid {
		t.Errorf("contentType = %v, want paid", info.ContentType)
	}
	if info.Author != "0x2222222222222222222222222222222222222222" {
		t.Errorf("author = %q", info.Author)
	}
}

func TestUserPosts(t *testing.T) {
	caller := newMockCaller()
	caller.results[methodGetUserPosts] = []interface{}{
		[]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)},
	}
	gw := testGateway(t, caller)

	ids, err := gw.UserPosts(context.Background())
	if err != nil {
		t.Fatalf("UserPosts failed: %v", err)
	}
	want := []string{"1", "2", "3"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
