// Package console gives a tray process a terminal of its own: a dedicated
// console window hosting the typed voice channel, prompts and the log.
package console

import (
	"errors"
	"fmt"
	"os"
)

var ErrAllocationFailed = errors.New("allocation failed")

type DedicatedConsole struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	StdinMode  uint32
	StdoutMode uint32
	StderrMode uint32

	OnCtrlC func(event any) bool

	// borrowed consoles are the terminal of the process itself; closing them
	// must not close its standard streams.
	borrowed bool
	free     func() error
}

func (this *DedicatedConsole) Read(p []byte) (n int, err error) {
	return this.Stdin.Read(p)
}

func (this *DedicatedConsole) Write(p []byte) (n int, err error) {
	return this.Stdout.Write(p)
}

func (this *DedicatedConsole) Close() (err error) {
	c := func(what *os.File) {
		if what == nil {
			return
		}
		if cErr := what.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	if !this.borrowed {
		c(this.Stdin)
		c(this.Stdout)
		c(this.Stderr)
	}
	if v := this.free; v != nil {
		if fErr := v(); fErr != nil && err == nil {
			err = fmt.Errorf("cannot free console: %w", fErr)
		}
	}
	return err
}

func (this *DedicatedConsole) onCtrlC(event any) bool {
	if v := this.OnCtrlC; v != nil {
		return v(event)
	}
	return true
}
