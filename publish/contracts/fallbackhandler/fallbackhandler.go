package fallbackhandler

import "github.com/ethereum/go-ethereum/common"

const (
	name    = "CompatibilityFallbackHandler"
	version = "1.3.0"
)

// Address is the canonical v1.3.0 CompatibilityFallbackHandler.
var Address = common.HexToAddress("0xf48f2B2d2a534e402487b3ee7C18c33Aec0Fe5e4")

func Name() string    { return name }
func Version() string { return version }
