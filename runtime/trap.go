package runtime

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/mswasm-runtime/hostcall"
)

// Trap is an aborted call to an export.
type Trap struct {
	Cause error
	Func  string
}

func (t *Trap) Error() string {
	return fmt.Sprintf("trap in %s: %v", t.Func, t.Cause)
}

func (t *Trap) Unwrap() error {
	return t.Cause
}

// ExitCode reports whether err represents normal termination and with which
// status: nil is status 0, a proc_exit anywhere in the chain is its code.
// Any other error is a trap and returns false.
func ExitCode(err error) (uint32, bool) {
	if err == nil {
		return 0, true
	}
	var exit *hostcall.ExitError
	if stderrors.As(err, &exit) {
		return exit.Code, true
	}
	return 0, false
}
