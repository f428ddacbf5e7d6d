package orm

import (
	"fmt"

	"github.com/TwigSlot/twig-server/internal/types"
)

// Query and mutation error codes.
const (
	// ErrCodeParameterMismatch: a prepared query was executed with a
	// parameter set differing from its declared required set. Programming
	// error; raised before any store call.
	ErrCodeParameterMismatch types.ErrorCode = "ORM_PARAMETER_MISMATCH"

	// ErrCodeAmbiguousResult: a query declared single returned more than one
	// record. The pattern itself is wrong; fails fast.
	ErrCodeAmbiguousResult types.ErrorCode = "ORM_AMBIGUOUS_RESULT"

	// ErrCodeCreationFailed: the store returned no record for an insert,
	// usually because a required endpoint vertex is missing.
	ErrCodeCreationFailed types.ErrorCode = "ORM_CREATION_FAILED"

	// ErrCodeNoKey: a mutation was attempted on an entity that has no
	// store-assigned key. Deleting something that was never created is a
	// programming error, not a silent success.
	ErrCodeNoKey types.ErrorCode = "ORM_NO_KEY"
)

// NewCreationFailed builds the typed error for a failed insert, identifying
// the attempted label and payload so callers can decide how to handle the
// referential-integrity problem.
func NewCreationFailed(label string, payload map[string]any) *types.TwigError {
	return types.NewError(ErrCodeCreationFailed,
		fmt.Sprintf("failed to create object %v (label: %s)", payload, label))
}
