//go:build !windows

package console

import (
	"fmt"
	"os"

	"github.com/chzyer/readline"
)

// NewDedicatedConsole cannot open a window outside Windows. It hands out
// the terminal the process was started from instead, if there is one.
func NewDedicatedConsole(string) (*DedicatedConsole, error) {
	if !readline.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("%w: the process is not attached to a terminal", ErrAllocationFailed)
	}
	return &DedicatedConsole{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		borrowed: true,
	}, nil
}
