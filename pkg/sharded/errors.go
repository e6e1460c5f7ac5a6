package sharded

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by At when the requested key is absent.
var ErrKeyNotFound = errors.New("sharded: key not found")

func keyNotFoundError[K any](k K) error {
	return fmt.Errorf("%w: %v", ErrKeyNotFound, k)
}

// At returns the value for key or ErrKeyNotFound if absent.
func (m *Map[K, V]) At(key K) (V, error) {
	v, ok := m.Get(key)
	if !ok {
		return v, keyNotFoundError(key)
	}
	return v, nil
}
