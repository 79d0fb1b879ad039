package safel2

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
)

const (
	name            = "GnosisSafeL2"
	version         = "1.3.0"
	license         = "LGPL-3.0-only"
	solidityVersion = "0.7.6"
)

// Address is the canonical v1.3.0 GnosisSafeL2 singleton, identical on every
// supported chain.
var Address = common.HexToAddress("0x3E5c63644E683549055b9Be8653de26E0B4CD36E")

var funcSetup = w3.MustNewFunc(
	"setup(address[],uint256,address,bytes,address,address,uint256,address)", "",
)

// InitArgs are the arguments of setup. Zero values disable the optional
// delegate call, fallback handler and refund.
type InitArgs struct {
	Owners          []common.Address
	Threshold       *big.Int
	To              common.Address
	Data            []byte
	FallbackHandler common.Address
	PaymentToken    common.Address
	Payment         *big.Int
	PaymentReceiver common.Address
}

func Name() string            { return name }
func Version() string         { return version }
func License() string         { return license }
func SolidityVersion() string { return solidityVersion }

func EncodeInit(args InitArgs) ([]byte, error) {
	data := args.Data
	if data == nil {
		data = []byte{}
	}
	return funcSetup.EncodeArgs(
		args.Owners,
		orZero(args.Threshold),
		args.To,
		data,
		args.FallbackHandler,
		args.PaymentToken,
		orZero(args.Payment),
		args.PaymentReceiver,
	)
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
