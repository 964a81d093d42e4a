package recipe

import "errors"

// Error kinds surfaced to callers as tagged results. None of these are
// retried internally; retrying is always the caller's decision.
var (
	// ErrInvalidInput marks a blank title or otherwise unusable request.
	ErrInvalidInput = errors.New("recipe name is required")

	// ErrGenerationParse marks an unparsable model response. The model
	// is non-deterministic, so the same request may succeed on a retry.
	ErrGenerationParse = errors.New("failed to generate recipe, please try again")

	// ErrEmptyPantry is returned by the suggestion path when the caller
	// has no pantry ingredients.
	ErrEmptyPantry = errors.New("your pantry is empty, add ingredients first")

	// ErrStoreUnavailable marks a database connectivity failure. It is
	// operator-correctable, not user-correctable.
	ErrStoreUnavailable = errors.New("recipe store unavailable")
)
