package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/CreonHQ/creon/pkg/errors"
)

// Signer signs ledger transactions for the active account. The keystore
// wallet provider satisfies it; a browser-bridged provider would forward
// the request to the extension instead.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// EthCaller drives the platform contract over an Ethereum JSON-RPC
// endpoint.
type EthCaller struct {
	rpc      *ethclient.Client
	abi      abi.ABI
	contract common.Address
	signer   Signer
	chainID  *big.Int
}

// Dial connects to the ledger RPC endpoint and verifies the chain ID
// matches the expected network before any call is issued.
func Dial(ctx context.Context, rpcURL, contractAddress string, chainID int64, signer Signer) (*EthCaller, error) {
	trimmed := strings.TrimSpace(rpcURL)
	if trimmed == "" {
		return nil, errors.NewValidationError("rpc_url", "ledger endpoint required", rpcURL)
	}

	client, err := ethclient.DialContext(ctx, trimmed)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("ledger", err)
	}

	reported, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, errors.NewUpstreamUnavailableError("ledger", err)
	}
	if reported.Int64() != chainID {
		client.Close()
		return nil, errors.Newf("ledger chain mismatch: expected %d, node reports %s", chainID, reported)
	}

	return &EthCaller{
		rpc:      client,
		abi:      parsedABI,
		contract: common.HexToAddress(contractAddress),
		signer:   signer,
		chainID:  big.NewInt(chainID),
	}, nil
}

// Close releases the underlying RPC connection.
func (c *EthCaller) Close() {
	c.rpc.Close()
}

// Call performs a read-only contract call from the signer's address.
func (c *EthCaller) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s", method)
	}

	msg := ethereum.CallMsg{
		From: c.signer.Address(),
		To:   &c.contract,
		Data: data,
	}
	out, err := c.rpc.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, classifyCallError(method, err)
	}

	results, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s result", method)
	}
	return results, nil
}

// Send submits a signed write and suspends until it settles. The receipt
// of a reverted transaction surfaces as TransactionRejected.
func (c *EthCaller) Send(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Receipt, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s", method)
	}

	from := c.signer.Address()
	nonce, err := c.rpc.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("ledger", err)
	}
	gasPrice, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("ledger", err)
	}

	msg := ethereum.CallMsg{
		From:  from,
		To:    &c.contract,
		Value: value,
		Data:  data,
	}
	gasLimit, err := c.rpc.EstimateGas(ctx, msg)
	if err != nil {
		// Estimation executes the call, so contract-level rejection
		// (insufficient value, already purchased) is surfaced here.
		return nil, classifySendError(method, from, err)
	}

	tx := types.NewTransaction(nonce, c.contract, value, gasLimit, gasPrice, data)
	signed, err := c.signer.SignTx(tx, c.chainID)
	if err != nil {
		return nil, errors.NewUserRejectedError(method)
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		return nil, classifySendError(method, from, err)
	}

	receipt, err := bind.WaitMined(ctx, c.rpc, signed)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("ledger", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errors.NewTransactionRejectedError(method, fmt.Errorf("transaction %s reverted", signed.Hash().Hex()))
	}
	return receipt, nil
}

func classifyCallError(method string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "execution reverted"):
		return errors.NewTransactionRejectedError(method, err)
	default:
		return errors.NewUpstreamUnavailableError("ledger", err)
	}
}

func classifySendError(method string, from common.Address, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return errors.NewInsufficientFundsError(from.Hex(), err)
	case strings.Contains(msg, "execution reverted"), strings.Contains(msg, "always failing"):
		return errors.NewTransactionRejectedError(method, err)
	case strings.Contains(msg, "user denied"), strings.Contains(msg, "user rejected"):
		return errors.NewUserRejectedError(method)
	default:
		return errors.NewUpstreamUnavailableError("ledger", err)
	}
}
