package level

import "sync"

// ring keeps the latest samples written to it.
type ring struct {
	data     []float32
	writePos int
	filled   int
	mutex    sync.RWMutex
}

func newRing(size int) *ring {
	return &ring{data: make([]float32, size)}
}

func (this *ring) Write(samples []float32) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	size := len(this.data)
	for _, s := range samples {
		this.data[this.writePos] = s
		this.writePos = (this.writePos + 1) % size
		if this.filled < size {
			this.filled++
		}
	}
}

// Latest returns the last n samples in the order they were written. If less
// than n samples are available all of them are returned.
func (this *ring) Latest(n int) []float32 {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if n > this.filled {
		n = this.filled
	}
	if n == 0 {
		return nil
	}
	size := len(this.data)
	result := make([]float32, n)
	start := (this.writePos - n + size) % size
	for i := range result {
		result[i] = this.data[(start+i)%size]
	}
	return result
}

func (this *ring) Clear() {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.writePos = 0
	this.filled = 0
}

func (this *ring) Len() int {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.filled
}
