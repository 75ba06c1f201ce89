package app

import (
	"fmt"
	"sync"

	"github.com/chzyer/readline"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

// prompts redirects every prompt to a Terminal. The terminal is acquired
// with the first prompt and kept until settle is called.
type prompts struct {
	terminal Terminal
	previous func() (*readline.Instance, error)
	current  func() (*readline.Instance, error)
	release  func()
	mutex    sync.Mutex
}

func redirectPrompts(to Terminal) *prompts {
	result := &prompts{
		terminal: to,
		previous: common.Terminal,
	}
	common.Terminal = result.open
	return result
}

func (this *prompts) open() (*readline.Instance, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.current == nil {
		stdin, stdout, release, err := this.terminal()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire terminal: %w", err)
		}
		this.current = common.TerminalOn(stdin, stdout)
		this.release = release
	}
	return this.current()
}

// settle releases the terminal. A later prompt acquires it again.
func (this *prompts) settle() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if v := this.release; v != nil {
		v()
	}
	this.release = nil
	this.current = nil
}

// restore settles and lets prompts use the terminal used before again.
func (this *prompts) restore() {
	this.settle()
	common.Terminal = this.previous
}
