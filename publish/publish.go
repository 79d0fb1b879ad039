package publish

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/lmittmann/w3/w3types"
)

const (
	DefaultPollInterval = 2 * time.Second

	// gasHeadroom is added on top of eth_estimateGas, in percent.
	gasHeadroom = 20
)

var ErrReadOnly = errors.New("client has no signer")

// TxSigner signs transactions for a single account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, s types.Signer) (*types.Transaction, error)
}

type (
	// Client talks to one chain. Without a signer it can only read.
	Client struct {
		client       *w3.Client
		chainID      uint64
		txSigner     types.Signer
		signer       TxSigner
		gasFeeCap    *big.Int
		gasTipCap    *big.Int
		pollInterval time.Duration
	}

	Option func(*Client)
)

func WithSigner(s TxSigner) Option {
	return func(c *Client) { c.signer = s }
}

// WithFeeCaps pins the EIP-1559 fee caps. Nil values are suggested by the
// node at send time.
func WithFeeCaps(gasFeeCap, gasTipCap *big.Int) Option {
	return func(c *Client) {
		c.gasFeeCap = gasFeeCap
		c.gasTipCap = gasTipCap
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// Dial connects to rpcURL and checks that the node serves chainID.
func Dial(ctx context.Context, rpcURL string, chainID uint64, opts ...Option) (*Client, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	c := &Client{
		client:       client,
		chainID:      chainID,
		txSigner:     types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	var remote uint64
	if err := client.CallCtx(ctx, eth.ChainID().Returns(&remote)); err != nil {
		client.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	if remote != chainID {
		client.Close()
		return nil, fmt.Errorf("rpc serves chain id %d, want %d", remote, chainID)
	}
	return c, nil
}

func (c *Client) ChainID() uint64 {
	return c.chainID
}

// Address returns the signer address, or the zero address for read-only
// clients.
func (c *Client) Address() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	var code []byte
	if err := c.client.CallCtx(ctx, eth.Code(addr, nil).Returns(&code)); err != nil {
		return nil, fmt.Errorf("get code: %w", err)
	}
	return code, nil
}

// Call executes input against to at the latest block without creating a
// transaction.
func (c *Client) Call(ctx context.Context, from, to common.Address, input []byte) ([]byte, error) {
	msg := &w3types.Message{From: from, To: &to, Input: input}

	var output []byte
	if err := c.client.CallCtx(ctx, eth.Call(msg, nil, nil).Returns(&output)); err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}
	return output, nil
}

// SendTransaction signs and submits a call to to. Gas is estimated by the
// node.
func (c *Client) SendTransaction(ctx context.Context, to common.Address, input []byte) (common.Hash, error) {
	if c.signer == nil {
		return common.Hash{}, ErrReadOnly
	}
	from := c.signer.Address()

	var (
		nonce uint64
		gas   uint64
	)
	if err := c.client.CallCtx(ctx,
		eth.Nonce(from, nil).Returns(&nonce),
		eth.EstimateGas(&w3types.Message{From: from, To: &to, Input: input}, nil).Returns(&gas),
	); err != nil {
		return common.Hash{}, fmt.Errorf("get nonce and gas: %w", err)
	}

	gasFeeCap, gasTipCap, err := c.fees(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	//  EIP-1559 only
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(c.chainID),
		Nonce:     nonce,
		To:        &to,
		GasFeeCap: gasFeeCap,
		GasTipCap: gasTipCap,
		Gas:       gas + gas*gasHeadroom/100,
		Data:      input,
	})
	return c.sendTx(ctx, tx)
}

func (c *Client) sendTx(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	signedTx, err := c.signer.SignTx(tx, c.txSigner)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}
	var hash common.Hash
	if err := c.client.CallCtx(ctx, eth.SendTx(signedTx).Returns(&hash)); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}
	return signedTx.Hash(), nil
}

// fees returns the fee cap and tip for a new transaction. Values not pinned
// with WithFeeCaps are suggested by the node; the tip never exceeds the cap.
func (c *Client) fees(ctx context.Context) (*big.Int, *big.Int, error) {
	feeCap, tip := c.gasFeeCap, c.gasTipCap
	if feeCap == nil || tip == nil {
		var (
			suggested *big.Int
			header    *types.Header
		)
		if err := c.client.CallCtx(ctx,
			eth.GasTipCap().Returns(&suggested),
			eth.HeaderByNumber(nil).Returns(&header),
		); err != nil {
			return nil, nil, fmt.Errorf("suggest fees: %w", err)
		}
		if tip == nil {
			tip = suggested
		}
		if feeCap == nil {
			if header.BaseFee == nil {
				return nil, nil, fmt.Errorf("chain %d has no base fee", c.chainID)
			}
			feeCap = new(big.Int).Add(new(big.Int).Mul(header.BaseFee, big.NewInt(2)), tip)
		}
	}
	if tip.Cmp(feeCap) > 0 {
		tip = feeCap
	}
	return feeCap, tip, nil
}

// WaitForReceipt polls until txHash is mined. Only a missing receipt is
// retried; any other error is returned as is.
func (c *Client) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var receipt *types.Receipt
		err := c.client.CallCtx(ctx, eth.TxReceipt(txHash).Returns(&receipt))
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("get receipt %s: %w", txHash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// isNotFound reports whether err only says the receipt does not exist yet.
// Errors that merely mention "not found", such as an unsupported method, are
// not retried.
func isNotFound(err error) bool {
	if errors.Is(err, ethereum.NotFound) {
		return true
	}
	var callErrs w3.CallErrors
	if !errors.As(err, &callErrs) {
		return false
	}
	found := false
	for _, e := range callErrs {
		if e == nil {
			continue
		}
		if !errors.Is(e, ethereum.NotFound) && e.Error() != ethereum.NotFound.Error() {
			return false
		}
		found = true
	}
	return found
}

func MustHexDecode(hexStr string) []byte {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexStr), "0x"))
	if err != nil {
		panic(fmt.Sprintf("decode hex: %v", err))
	}
	return b
}
