package safe

import (
	"context"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/chains"
)

// RPCDialer connects to chains over JSON-RPC.
type RPCDialer struct {
	Options []publish.Option
}

func (d RPCDialer) DialReader(ctx context.Context, chain chains.Chain) (Reader, error) {
	client, err := publish.Dial(ctx, chain.RPCURL, chain.ID, d.Options...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (d RPCDialer) DialWriter(ctx context.Context, chain chains.Chain, signer publish.TxSigner) (Writer, error) {
	opts := append(append([]publish.Option(nil), d.Options...), publish.WithSigner(signer))
	client, err := publish.Dial(ctx, chain.RPCURL, chain.ID, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}
