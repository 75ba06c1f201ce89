package common

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

var (
	ErrLineTooLong   = errors.New("line too long")
	ErrStopIteration = errors.New("stop iteration")
)

// NewRingLineBuffer creates a buffer which keeps the last maxLines lines
// written to it.
func NewRingLineBuffer(maxLines, maxLineLength uint32) *RingLineBuffer {
	return &RingLineBuffer{
		current:       make([]byte, 0, maxLineLength),
		maxLineLength: int(maxLineLength),
		lines:         make([][]byte, maxLines),
	}
}

type RingLineBuffer struct {
	// TruncateTooLongLines cuts lines at the maximum line length and drops
	// everything up to the next newline instead of failing.
	TruncateTooLongLines bool

	current       []byte
	maxLineLength int
	truncating    bool

	lines  [][]byte
	start  int
	length int

	mutex sync.RWMutex
}

func (this *RingLineBuffer) Write(p []byte) (n int, err error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	for len(p) > 0 {
		chunk := p
		nl := bytes.IndexByte(p, '\n')
		if nl >= 0 {
			chunk = p[:nl]
		}

		if !this.truncating {
			if len(this.current)+len(chunk) > this.maxLineLength {
				if !this.TruncateTooLongLines {
					this.current = this.current[:0]
					return n, ErrLineTooLong
				}
				chunk = chunk[:this.maxLineLength-len(this.current)]
				this.current = append(this.current, chunk...)
				this.add(this.current)
				this.current = this.current[:0]
				this.truncating = true
			} else {
				this.current = append(this.current, chunk...)
			}
		}

		if nl < 0 {
			return n + len(p), nil
		}
		if this.truncating {
			this.truncating = false
		} else {
			this.add(this.current)
			this.current = this.current[:0]
		}
		n += nl + 1
		p = p[nl+1:]
	}
	return n, nil
}

// AddLine adds the given line as a whole.
func (this *RingLineBuffer) AddLine(line []byte) error {
	if len(line) > this.maxLineLength {
		return ErrLineTooLong
	}

	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.add(line)
	return nil
}

func (this *RingLineBuffer) add(line []byte) {
	capacity := len(this.lines)
	if capacity == 0 {
		return
	}
	i := (this.start + this.length) % capacity
	this.lines[i] = bytes.Clone(line)
	if this.length < capacity {
		this.length++
	} else {
		this.start = (this.start + 1) % capacity
	}
}

func (this *RingLineBuffer) NumberOfLines() uint32 {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return uint32(this.length)
}

type LineConsumer func(uint32, []byte) error

// ConsumeLines calls the consumer with every line from the oldest to the
// newest one. Returning ErrStopIteration stops without an error.
func (this *RingLineBuffer) ConsumeLines(consumer LineConsumer) error {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	capacity := len(this.lines)
	for i := 0; i < this.length; i++ {
		if err := consumer(uint32(i), this.lines[(this.start+i)%capacity]); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (this *RingLineBuffer) WriteTo(to io.Writer) (n int64, err error) {
	err = this.ConsumeLines(func(_ uint32, line []byte) error {
		wn, wErr := to.Write(append(bytes.Clone(line), '\n'))
		n += int64(wn)
		return wErr
	})
	return n, err
}
