package engine

import "sync"

// queue is an unbounded FIFO of functions to be executed by the event loop.
// push never blocks, so it is safe to use from inside the loop itself.
type queue struct {
	items  []func()
	signal chan struct{}
	mutex  sync.Mutex
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

func (this *queue) push(fn func()) {
	this.mutex.Lock()
	this.items = append(this.items, fn)
	this.mutex.Unlock()

	select {
	case this.signal <- struct{}{}:
	default:
	}
}

func (this *queue) pop() (fn func(), ok bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if len(this.items) == 0 {
		return nil, false
	}
	fn = this.items[0]
	this.items[0] = nil
	this.items = this.items[1:]
	return fn, true
}
