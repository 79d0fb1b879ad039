package safe

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/chains"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/contracts/safeproxyfactory"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/journal"
)

type (
	Resolver interface {
		Resolve(name string) (chains.Chain, error)
	}

	// Reader is a read-only connection to one chain.
	Reader interface {
		CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
		Call(ctx context.Context, from, to common.Address, input []byte) ([]byte, error)
		Close() error
	}

	// Writer is a connection to one chain that submits signed transactions.
	Writer interface {
		Reader
		SendTransaction(ctx context.Context, to common.Address, input []byte) (common.Hash, error)
		WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	}

	Dialer interface {
		DialReader(ctx context.Context, chain chains.Chain) (Reader, error)
		DialWriter(ctx context.Context, chain chains.Chain, signer publish.TxSigner) (Writer, error)
	}

	Journal interface {
		Record(e journal.Entry) error
	}

	ChainReceipt struct {
		Chain   chains.Chain
		Receipt *types.Receipt
	}

	// Deployment is the outcome of a successful Deploy, receipts in the
	// requested chain order.
	Deployment struct {
		RunID    string
		Address  common.Address
		Receipts []ChainReceipt
	}

	Orchestrator struct {
		resolver Resolver
		dialer   Dialer
		journal  Journal
		log      log.Logger
		now      func() time.Time
	}

	Option func(*Orchestrator)
)

func WithJournal(j Journal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

func WithLogger(l log.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func NewOrchestrator(resolver Resolver, dialer Dialer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: resolver,
		dialer:   dialer,
		log:      log.Root(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (d *Deployment) ByChain() map[string]*types.Receipt {
	out := make(map[string]*types.Receipt, len(d.Receipts))
	for _, r := range d.Receipts {
		out[r.Chain.Name] = r.Receipt
	}
	return out
}

// Deploy creates the Safe described by spec on every named chain.
//
// Every chain is first simulated and must return the locally derived
// address; nothing is sent unless all of them agree. Chains are then
// deployed one at a time in the given order, each waiting for its receipt.
// A failure in that second phase returns a *PartialDeploymentError carrying
// the receipts already confirmed. Nothing is rolled back.
func (o *Orchestrator) Deploy(ctx context.Context, spec WalletSpec, chainNames []string, signer publish.TxSigner) (*Deployment, error) {
	if signer == nil {
		return nil, ErrNoSigner
	}
	targets, err := o.resolve(chainNames)
	if err != nil {
		return nil, err
	}

	expected := CalculateAddress(spec)
	input, err := CreateProxyInput(spec)
	if err != nil {
		return nil, fmt.Errorf("encode createProxyWithNonce: %w", err)
	}
	o.log.Info("Safe will be created across chains", "address", expected, "chains", len(targets))

	for _, c := range targets {
		if err := o.verify(ctx, c, signer.Address(), expected, input); err != nil {
			return nil, err
		}
		o.log.Info("Verified expected address", "chain", c.Name, "address", expected)
	}

	d := &Deployment{RunID: journal.NewRunID(), Address: expected}
	for i, c := range targets {
		o.log.Info("Creating Safe", "chain", c.Name)

		receipt, submitted, err := o.execute(ctx, c, signer, expected, input)
		if err != nil {
			pending := make([]string, 0, len(targets)-i)
			for _, t := range targets[i:] {
				pending = append(pending, t.Name)
			}
			if submitted != (common.Hash{}) {
				o.log.Warn("Safe creation unconfirmed", "chain", c.Name, "tx", submitted, "err", err)
			}
			return nil, &PartialDeploymentError{
				RunID:     d.RunID,
				Completed: d.Receipts,
				Pending:   pending,
				Submitted: submitted,
				Err:       err,
			}
		}

		d.Receipts = append(d.Receipts, ChainReceipt{Chain: c, Receipt: receipt})
		o.record(d.RunID, expected, c, receipt)
		o.log.Info("Created Safe", "chain", c.Name, "address", expected,
			"tx", receipt.TxHash, "block", receipt.BlockNumber, "gas", receipt.GasUsed)
	}
	return d, nil
}

func (o *Orchestrator) resolve(names []string) ([]chains.Chain, error) {
	if len(names) == 0 {
		return nil, ErrNoChains
	}
	seen := make(map[string]bool, len(names))
	out := make([]chains.Chain, 0, len(names))
	for _, name := range names {
		c, err := o.resolver.Resolve(name)
		if err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateChain, c.Name)
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out, nil
}

func (o *Orchestrator) verify(ctx context.Context, c chains.Chain, from, expected common.Address, input []byte) error {
	client, err := o.dialer.DialReader(ctx, c)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.Name, err)
	}
	defer client.Close()

	code, err := client.CodeAt(ctx, expected)
	if err != nil {
		return fmt.Errorf("check code in %s: %w", c.Name, err)
	}
	if len(code) > 0 {
		return &AlreadyDeployedError{Chain: c.Name, Address: expected}
	}

	output, err := client.Call(ctx, from, FactoryAddress, input)
	if err != nil {
		return fmt.Errorf("simulate in %s: %w", c.Name, err)
	}
	actual, err := safeproxyfactory.DecodeCreateProxyWithNonce(output)
	if err != nil {
		return fmt.Errorf("decode simulation in %s: %w", c.Name, err)
	}
	if actual != expected {
		return &AddressMismatchError{Chain: c.Name, Expected: expected, Actual: actual}
	}
	return nil
}

// execute submits the factory call on c and waits for it. The returned hash is
// set once the transaction has been broadcast, also when waiting fails.
func (o *Orchestrator) execute(ctx context.Context, c chains.Chain, signer publish.TxSigner, expected common.Address, input []byte) (*types.Receipt, common.Hash, error) {
	client, err := o.dialer.DialWriter(ctx, c, signer)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	txHash, err := client.SendTransaction(ctx, FactoryAddress, input)
	if err != nil {
		return nil, common.Hash{}, err
	}
	o.log.Debug("Submitted Safe creation", "chain", c.Name, "tx", txHash)

	receipt, err := client.WaitForReceipt(ctx, txHash)
	if err != nil {
		return nil, txHash, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, common.Hash{}, fmt.Errorf("transaction %s reverted", txHash.Hex())
	}

	proxy, err := safeproxyfactory.ProxyAddressFromReceipt(receipt)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("transaction %s: %w", txHash.Hex(), err)
	}
	if proxy != expected {
		return nil, common.Hash{}, &AddressMismatchError{Chain: c.Name, Expected: expected, Actual: proxy}
	}
	return receipt, common.Hash{}, nil
}

// record journals a confirmed chain. The transaction is already final, so a
// journal failure is only logged.
func (o *Orchestrator) record(runID string, safe common.Address, c chains.Chain, receipt *types.Receipt) {
	if o.journal == nil {
		return
	}
	e := journal.Entry{
		RunID:       runID,
		Safe:        safe,
		Chain:       c.Name,
		ChainID:     c.ID,
		TxHash:      receipt.TxHash,
		GasUsed:     receipt.GasUsed,
		ConfirmedAt: o.now().UTC(),
	}
	if receipt.BlockNumber != nil {
		e.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if err := o.journal.Record(e); err != nil {
		o.log.Warn("Failed to journal deployment", "chain", c.Name, "tx", receipt.TxHash, "err", err)
	}
}
