// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialKeys generates deterministic item keys: "p1", "p2", ...
//
// It satisfies store.KeyGenerator, so seeded items get the same keys on
// every run and golden files stay stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialKeys struct {
	mu     sync.Mutex
	prefix string
	n      int64
}

// NewSequentialKeys creates a generator. An empty prefix defaults to "item".
func NewSequentialKeys(prefix string) *SequentialKeys {
	if prefix == "" {
		prefix = "item"
	}
	return &SequentialKeys{prefix: prefix}
}

// Generate returns the next key.
func (k *SequentialKeys) Generate() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.n++
	return fmt.Sprintf("%s%d", k.prefix, k.n)
}

// Current returns how many keys were generated.
func (k *SequentialKeys) Current() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.n
}

// Reset restarts the sequence. After Reset, Generate returns prefix + "1".
func (k *SequentialKeys) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.n = 0
}
