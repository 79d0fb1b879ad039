package safe

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/contracts/fallbackhandler"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/contracts/safel2"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/contracts/safeproxy"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/contracts/safeproxyfactory"
)

// Canonical v1.3.0 deployment. The same addresses on every chain are what
// make the CREATE2 address chain independent.
var (
	FactoryAddress         = safeproxyfactory.Address
	SingletonAddress       = safel2.Address
	FallbackHandlerAddress = fallbackhandler.Address
)

// SetupData returns the setup call applied to the fresh proxy: the wallet's
// owners and threshold, the canonical fallback handler, no delegate call and
// no refund.
func SetupData(spec WalletSpec) []byte {
	data, err := safel2.EncodeInit(safel2.InitArgs{
		Owners:          spec.owners,
		Threshold:       new(big.Int).SetUint64(spec.threshold),
		FallbackHandler: FallbackHandlerAddress,
	})
	if err != nil {
		// only reachable with argument types that do not match the ABI
		panic(fmt.Sprintf("encode setup: %v", err))
	}
	return data
}

// CreateProxyInput returns the factory calldata that deploys spec.
func CreateProxyInput(spec WalletSpec) ([]byte, error) {
	return safeproxyfactory.EncodeCreateProxyWithNonce(safeproxyfactory.CreateArgs{
		Singleton:   SingletonAddress,
		Initializer: SetupData(spec),
		SaltNonce:   spec.Nonce(),
	})
}

// CalculateAddress returns the address the factory deploys spec to.
func CalculateAddress(spec WalletSpec) common.Address {
	salt := publish.Create2Salt(crypto.Keccak256(SetupData(spec)), publish.Uint256(spec.Nonce()))
	return publish.PredictCreate2Address(FactoryAddress, salt, safeproxy.EncodeDeploy(SingletonAddress))
}
