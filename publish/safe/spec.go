// Package safe derives counterfactual Safe wallet addresses and deploys a
// wallet to the same address on several chains.
package safe

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

var ErrInvalidSpec = errors.New("invalid wallet spec")

// WalletSpec identifies one deployable Safe configuration. Owner order is
// significant: it is part of the setup payload and therefore of the address.
type WalletSpec struct {
	owners    []common.Address
	threshold uint64
	nonce     *big.Int
}

// NewWalletSpec validates and copies its arguments. Owner uniqueness is not
// checked.
func NewWalletSpec(owners []common.Address, threshold uint64, nonce *big.Int) (WalletSpec, error) {
	if len(owners) == 0 {
		return WalletSpec{}, fmt.Errorf("%w: no owners", ErrInvalidSpec)
	}
	if threshold == 0 || threshold > uint64(len(owners)) {
		return WalletSpec{}, fmt.Errorf("%w: threshold %d not in [1, %d]", ErrInvalidSpec, threshold, len(owners))
	}
	if nonce == nil {
		nonce = new(big.Int)
	}
	if nonce.Sign() < 0 || nonce.Cmp(math.MaxBig256) > 0 {
		return WalletSpec{}, fmt.Errorf("%w: nonce %s out of uint256 range", ErrInvalidSpec, nonce)
	}

	return WalletSpec{
		owners:    append([]common.Address(nil), owners...),
		threshold: threshold,
		nonce:     new(big.Int).Set(nonce),
	}, nil
}

func (s WalletSpec) Owners() []common.Address {
	return append([]common.Address(nil), s.owners...)
}

func (s WalletSpec) Threshold() uint64 {
	return s.threshold
}

func (s WalletSpec) Nonce() *big.Int {
	if s.nonce == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.nonce)
}
