package densemap

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by At when the requested key is absent.
var ErrKeyNotFound = errors.New("densemap: key not found")

// ErrCapacityExhausted is panicked by Set once the table already holds
// the largest entry count the 46-bit entry-index field can address.
// There is no larger capacity to resize into, so this is fatal rather
// than a normal return.
var ErrCapacityExhausted = errors.New("densemap: capacity exhausted")

// ErrAllocationFailure is panicked (wrapped, via errors.Is) when a
// resize cannot allocate its target capacity. The table is left in its
// pre-operation state.
var ErrAllocationFailure = errors.New("densemap: allocation failure")

// ErrInvariantViolation is returned by VerifyInvariants when a live
// entry's recorded bucket metadata no longer matches its true probe
// position, most often a sign the Provider hashed equal keys unequally.
var ErrInvariantViolation = errors.New("densemap: invariant violation")

// keyNotFoundError wraps ErrKeyNotFound with the offending key so callers
// using errors.Is still match while %v output stays useful.
func keyNotFoundError[K any](k K) error {
	return fmt.Errorf("%w: %v", ErrKeyNotFound, k)
}

// invariantError wraps ErrInvariantViolation with the offending key.
func invariantError[K any](k K) error {
	return fmt.Errorf("%w: %v", ErrInvariantViolation, k)
}
