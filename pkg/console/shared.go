package console

import (
	"io"
	"sync"

	log "github.com/echocat/slf4g"
)

// Shared opens the dedicated console on the first Acquire and closes it
// again once the last holder released it. While it is open the log is
// shown on it.
type Shared struct {
	Title  string
	Output *Output

	// Open creates the console. NewDedicatedConsole is used if nil.
	Open func(title string) (*DedicatedConsole, error)
	// OnCtrlC is called if Ctrl+C was pressed or the window was closed
	// while the console is open. The process keeps running.
	OnCtrlC func()

	current *DedicatedConsole
	detach  func()
	holders int
	mutex   sync.Mutex
}

func (this *Shared) Acquire() (_ *DedicatedConsole, release func(), _ error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.current == nil {
		open := this.Open
		if open == nil {
			open = NewDedicatedConsole
		}
		dc, err := open(this.Title)
		if err != nil {
			return nil, nil, err
		}
		dc.OnCtrlC = func(any) bool {
			if v := this.OnCtrlC; v != nil {
				v()
			}
			return false
		}
		if v := this.Output; v != nil {
			this.detach = v.Attach(dc.Stdout)
		}
		this.current = dc
		log.Debug("Console opened.")
	}
	this.holders++

	var once sync.Once
	return this.current, func() {
		once.Do(this.release)
	}, nil
}

// Streams acquires the console and returns its input and output.
func (this *Shared) Streams() (stdin io.ReadCloser, stdout io.Writer, release func(), err error) {
	dc, release, err := this.Acquire()
	if err != nil {
		return nil, nil, nil, err
	}
	return dc.Stdin, dc.Stdout, release, nil
}

func (this *Shared) IsOpen() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.current != nil
}

func (this *Shared) release() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.holders--
	if this.holders > 0 || this.current == nil {
		return
	}
	if v := this.detach; v != nil {
		v()
		this.detach = nil
	}
	if err := this.current.Close(); err != nil {
		log.WithError(err).
			Warn("Cannot close console.")
	}
	this.current = nil
	log.Debug("Console closed.")
}
