package session

import (
	"context"
	"errors"
	"sync"
)

// ErrSubstrateUnavailable wraps I/O failures of the backing key-value surface.
var ErrSubstrateUnavailable = errors.New("session substrate unavailable")

// Substrate is the key-value persistence surface behind a [Store]. Implementations
// must apply Save and Delete to all given keys at once.
type Substrate interface {
	// Load returns the values of the keys that exist. Missing keys are absent from
	// the map, not an error.
	Load(ctx context.Context, keys ...string) (map[string][]byte, error)
	Save(ctx context.Context, values map[string][]byte) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Memory is an in-process [Substrate]. The zero value is ready to use.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (m *Memory) Save(_ context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values == nil {
		m.values = make(map[string][]byte, len(values))
	}
	for k, v := range values {
		m.values[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
