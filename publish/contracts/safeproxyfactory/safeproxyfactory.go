package safeproxyfactory

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
)

const (
	name            = "GnosisSafeProxyFactory"
	version         = "1.3.0"
	license         = "LGPL-3.0-only"
	solidityVersion = "0.7.6"
)

// Address is the canonical v1.3.0 proxy factory, identical on every
// supported chain.
var Address = common.HexToAddress("0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2")

var (
	funcCreateProxyWithNonce = w3.MustNewFunc(
		"createProxyWithNonce(address,bytes,uint256)", "address",
	)
	eventProxyCreation = w3.MustNewEvent(
		"ProxyCreation(address,address)",
	)
)

var ErrNoProxyCreation = errors.New("ProxyCreation event not found in receipt logs")

type CreateArgs struct {
	Singleton   common.Address
	Initializer []byte
	SaltNonce   *big.Int
}

func Name() string            { return name }
func Version() string         { return version }
func License() string         { return license }
func SolidityVersion() string { return solidityVersion }

func EncodeCreateProxyWithNonce(args CreateArgs) ([]byte, error) {
	return funcCreateProxyWithNonce.EncodeArgs(args.Singleton, args.Initializer, args.SaltNonce)
}

// DecodeCreateProxyWithNonce decodes the proxy address returned by a
// simulated createProxyWithNonce call.
func DecodeCreateProxyWithNonce(output []byte) (common.Address, error) {
	var proxy common.Address
	if err := funcCreateProxyWithNonce.DecodeReturns(output, &proxy); err != nil {
		return common.Address{}, err
	}
	return proxy, nil
}

// ProxyAddressFromReceipt returns the proxy announced by the factory in
// receipt.
func ProxyAddressFromReceipt(receipt *types.Receipt) (common.Address, error) {
	for _, log := range receipt.Logs {
		if log.Address != Address {
			continue
		}
		var (
			proxy     common.Address
			singleton common.Address
		)
		if err := eventProxyCreation.DecodeArgs(log, &proxy, &singleton); err == nil {
			return proxy, nil
		}
	}
	return common.Address{}, ErrNoProxyCreation
}
