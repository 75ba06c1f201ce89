package preferences

import (
	"bytes"
	"context"
	"sync"
)

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

type Memory struct {
	values map[string][]byte
	mutex  sync.RWMutex
}

func (this *Memory) Get(_ context.Context, key string) ([]byte, error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	v, ok := this.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (this *Memory) Set(_ context.Context, key string, value []byte) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.values == nil {
		this.values = make(map[string][]byte)
	}
	this.values[key] = bytes.Clone(value)
	return nil
}

func (this *Memory) Close() error {
	return nil
}
