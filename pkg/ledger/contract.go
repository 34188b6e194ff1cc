package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

// platformABI describes the content platform contract surface the gateway
// drives. Reads are free and side-effect-free; writes carry from and,
// for paid unlocks, value in base units.
const platformABI = `[
  {"type":"function","name":"publishFreeContent","stateMutability":"nonpayable","inputs":[{"name":"content","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"publishPaidContent","stateMutability":"nonpayable","inputs":[{"name":"content","type":"string"},{"name":"price","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getUserPosts","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getPostInfo","stateMutability":"view","inputs":[{"name":"postId","type":"uint256"}],"outputs":[{"name":"author","type":"address"},{"name":"contentType","type":"uint8"},{"name":"price","type":"uint256"},{"name":"timestamp","type":"uint256"}]},
  {"type":"function","name":"viewContent","stateMutability":"view","inputs":[{"name":"postId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"accessContent","stateMutability":"payable","inputs":[{"name":"postId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawCreatorBalance","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"event","name":"PostPublished","inputs":[{"name":"author","type":"address","indexed":true},{"name":"postId","type":"uint256","indexed":true},{"name":"contentType","type":"uint8","indexed":false}],"anonymous":false}
]`

// Contract method names.
const (
	methodPublishFree  = "publishFreeContent"
	methodPublishPaid  = "publishPaidContent"
	methodGetUserPosts = "getUserPosts"
	methodGetPostInfo  = "getPostInfo"
	methodViewContent  = "viewContent"
	methodAccess       = "accessContent"
	methodWithdraw     = "withdrawCreatorBalance"

	eventPostPublished = "PostPublished"
)

// Caller abstracts the deployed contract. Reads resolve immediately;
// writes suspend the caller until the transaction settles or fails, an
// unbounded provider-dependent wait. Writes are single-shot: resubmission
// risks duplicate payment, so no implementation retries.
type Caller interface {
	// Call performs a read. The active account is used as the call sender
	// so authorization-sensitive reads resolve correctly.
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)

	// Send submits a write carrying value base units and waits for the
	// settled receipt.
	Send(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Receipt, error)
}

// TxReceipt summarizes a settled write for callers outside this package.
type TxReceipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

func summarizeReceipt(r *types.Receipt) *TxReceipt {
	if r == nil {
		return nil
	}
	out := &TxReceipt{
		TxHash:  r.TxHash.Hex(),
		GasUsed: r.GasUsed,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}
