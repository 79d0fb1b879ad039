package safe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNoChains       = errors.New("no chains given")
	ErrDuplicateChain = errors.New("chain given more than once")
	ErrNoSigner       = errors.New("no signer given")
)

// AddressMismatchError reports a chain whose factory would deploy the Safe
// somewhere other than the locally derived address.
type AddressMismatchError struct {
	Chain    string
	Expected common.Address
	Actual   common.Address
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("expected address %s but got %s in chain %s", e.Expected.Hex(), e.Actual.Hex(), e.Chain)
}

// AlreadyDeployedError reports a chain that already has code at the Safe
// address.
type AlreadyDeployedError struct {
	Chain   string
	Address common.Address
}

func (e *AlreadyDeployedError) Error() string {
	return fmt.Sprintf("safe %s already deployed in chain %s", e.Address.Hex(), e.Chain)
}

// PartialDeploymentError is returned when a chain fails after the
// verification phase. Chains in Completed hold the Safe; Pending lists the
// failed chain followed by the ones never attempted. Submitted is set when the
// failed chain's transaction was broadcast but its receipt never confirmed, so
// it may still be mined.
type PartialDeploymentError struct {
	RunID     string
	Completed []ChainReceipt
	Pending   []string
	Submitted common.Hash
	Err       error
}

func (e *PartialDeploymentError) Error() string {
	done := make([]string, len(e.Completed))
	for i, r := range e.Completed {
		done[i] = r.Chain.Name
	}

	state := fmt.Sprintf("deployed in [%s]", strings.Join(done, " "))
	notDeployed := e.Pending
	if e.Unconfirmed() {
		state += fmt.Sprintf(", submitted %s in %s, unconfirmed", e.Submitted.Hex(), e.Failed())
		notDeployed = notDeployed[1:]
	}
	return fmt.Sprintf("deploy in chain %s: %v (%s, not deployed in [%s])",
		e.Failed(), e.Err, state, strings.Join(notDeployed, " "))
}

// Unconfirmed reports whether the failed chain has a transaction in flight.
func (e *PartialDeploymentError) Unconfirmed() bool {
	return e.Submitted != (common.Hash{}) && len(e.Pending) > 0
}

// Failed returns the chain the deployment stopped at.
func (e *PartialDeploymentError) Failed() string {
	if len(e.Pending) == 0 {
		return ""
	}
	return e.Pending[0]
}

func (e *PartialDeploymentError) Unwrap() error {
	return e.Err
}
