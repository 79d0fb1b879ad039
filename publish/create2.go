package publish

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Create2Salt hashes the concatenation of parts into a CREATE2 salt.
func Create2Salt(parts ...[]byte) common.Hash {
	return crypto.Keccak256Hash(parts...)
}

// Uint256 returns the 32 byte big endian encoding of n.
func Uint256(n *big.Int) []byte {
	return math.U256Bytes(new(big.Int).Set(n))
}

// PredictCreate2Address returns the address deployer creates for initCode
// under salt.
func PredictCreate2Address(deployer common.Address, salt common.Hash, initCode []byte) common.Address {
	return crypto.CreateAddress2(deployer, salt, crypto.Keccak256(initCode))
}
