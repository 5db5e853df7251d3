package server

import (
	"errors"
	"fmt"

	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/shape"
)

// Facade errors. Errors raised by the core are passed through unchanged, so
// errors.Is works against the physics and shape sentinels too.
var (
	// ErrInvalidRID indicates a handle that no table of this server owns.
	ErrInvalidRID = errors.New("physics: invalid RID")

	// ErrWrongType indicates a live handle of the wrong kind, such as a body
	// RID passed where a joint is expected.
	ErrWrongType = errors.New("physics: RID has the wrong type")

	// ErrInvalidShapeData indicates data a shape rejected.
	ErrInvalidShapeData = shape.ErrInvalidData

	// ErrUnsupportedShape indicates a shape type the server cannot create.
	ErrUnsupportedShape = shape.ErrUnsupportedType

	ErrInvalidParameter   = physics.ErrInvalidParameter
	ErrSameBody           = physics.ErrSameBody
	ErrShapeIndex         = physics.ErrShapeIndex
	ErrShapeNotConfigured = physics.ErrShapeNotConfigured
	ErrNoSpace            = physics.ErrNoSpace
	ErrSpaceLocked        = physics.ErrSpaceLocked
	ErrWrongValue         = physics.ErrWrongValue
)

// OpError records the facade operation and handle a failure came from.
type OpError struct {
	Op      string
	RID     rid.RID
	Wrapped error
}

func (e *OpError) Error() string {
	if e.RID == rid.Invalid {
		return fmt.Sprintf("%s: %v", e.Op, e.Wrapped)
	}
	return fmt.Sprintf("%s %v: %v", e.Op, e.RID, e.Wrapped)
}

func (e *OpError) Unwrap() error {
	return e.Wrapped
}
