package safeproxy

import (
	_ "embed"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish"
)

const (
	name            = "GnosisSafeProxy"
	version         = "1.3.0"
	license         = "LGPL-3.0-only"
	solidityVersion = "0.7.6"
)

// Creation code as returned by GnosisSafeProxyFactory.proxyCreationCode().
//
//go:embed GnosisSafeProxy.bin
var bytecodeHex string

func Name() string            { return name }
func Version() string         { return version }
func License() string         { return license }
func SolidityVersion() string { return solidityVersion }

func Bytecode() []byte {
	return publish.MustHexDecode(bytecodeHex)
}

// EncodeDeploy returns the init code of a proxy delegating to singleton:
// the creation code followed by the ABI encoded constructor argument.
func EncodeDeploy(singleton common.Address) []byte {
	code := Bytecode()
	return append(code, common.LeftPadBytes(singleton.Bytes(), 32)...)
}
