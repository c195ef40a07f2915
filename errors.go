package sparsim

import (
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/internal/placement"
)

var (
	// ErrInvalidConfig is returned for unusable simulator settings.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownAlgorithm is returned by ParseAlgorithm.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// ValidationError reports a vertex whose replicas break a placement
// invariant. It is returned by runs with validation enabled.
type ValidationError = placement.ValidationError

// IsInvariantViolation reports whether err stems from a broken internal
// invariant. Such errors abort the run and indicate a bug, not bad input.
func IsInvariantViolation(err error) bool {
	return errors.HasAssertionFailure(err)
}

// invalidConfig keeps ErrInvalidConfig in the Unwrap chain and attaches
// the cause as a secondary error.
func invalidConfig(err error) error {
	return errors.WithSecondaryError(errors.Wrapf(ErrInvalidConfig, "%v", err), err)
}
