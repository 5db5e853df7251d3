package physics

import "errors"

var (
	// ErrInvalidParameter indicates a parameter value outside its valid range.
	ErrInvalidParameter = errors.New("physics: invalid parameter")

	// ErrSameBody indicates a two-body joint whose bodies are the same.
	ErrSameBody = errors.New("physics: joint bodies must differ")

	// ErrShapeIndex indicates a shape index outside the object's shape list.
	ErrShapeIndex = errors.New("physics: shape index out of range")

	// ErrShapeNotConfigured indicates a shape used before its data was set.
	ErrShapeNotConfigured = errors.New("physics: shape not configured")

	// ErrNoSpace indicates an operation that needs the object to be in a space.
	ErrNoSpace = errors.New("physics: object is not in a space")

	// ErrSpaceLocked indicates access to a space while it is stepping or
	// while queued callbacks are pending.
	ErrSpaceLocked = errors.New("physics: space is locked")

	// ErrWrongValue indicates a state value of the wrong Go type.
	ErrWrongValue = errors.New("physics: wrong value type")
)
