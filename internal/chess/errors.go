package chess

import "errors"

var (
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrInvalidSquare    = errors.New("invalid square")
	ErrInvalidSide      = errors.New("invalid side")
)
