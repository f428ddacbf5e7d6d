package entity

import "github.com/TwigSlot/twig-server/internal/types"

// Domain-level error codes.
const (
	// ErrCodeTagAlreadyAttached: the guarded attach found an existing
	// tagging edge and refused to create a duplicate.
	ErrCodeTagAlreadyAttached types.ErrorCode = "ENTITY_TAG_ALREADY_ATTACHED"

	// ErrCodeMissingParent: an entity creation was attempted with a parent
	// (owner or containing project) that has no store key yet.
	ErrCodeMissingParent types.ErrorCode = "ENTITY_MISSING_PARENT"
)
