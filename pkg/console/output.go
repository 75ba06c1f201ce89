package console

import (
	"io"
	"sync"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

// NewOutput creates the writer the log is written to. Everything is kept in
// the given buffer, so writers attached later see the recent history.
func NewOutput(buffer *common.RingLineBuffer) *Output {
	return &Output{
		buffer:    buffer,
		delegates: make(map[uint64]io.Writer),
	}
}

type Output struct {
	buffer *common.RingLineBuffer

	delegates      map[uint64]io.Writer
	delegatesOrder []uint64
	nextId         uint64
	mutex          sync.RWMutex
}

func (this *Output) Write(p []byte) (n int, err error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if n, err = this.buffer.Write(p); err != nil {
		return n, err
	}
	for _, id := range this.delegatesOrder {
		if _, dErr := this.delegates[id].Write(p); dErr != nil && err == nil {
			err = dErr
		}
	}
	return n, err
}

// Attach replays the buffered lines to the given writer and forwards
// everything written afterward to it, until detach is called.
func (this *Output) Attach(w io.Writer) (detach func()) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	_, _ = this.buffer.WriteTo(w)

	id := this.nextId
	this.nextId++
	this.delegates[id] = w
	this.delegatesOrder = append(this.delegatesOrder, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			this.mutex.Lock()
			defer this.mutex.Unlock()
			delete(this.delegates, id)
			for i, candidate := range this.delegatesOrder {
				if candidate == id {
					this.delegatesOrder = append(this.delegatesOrder[:i], this.delegatesOrder[i+1:]...)
					break
				}
			}
		})
	}
}
