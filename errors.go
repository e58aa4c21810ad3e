package paint

import "errors"

var (
	// ErrLayerNotFound is returned when a layer id does not name a layer
	// in the stack.
	ErrLayerNotFound = errors.New("paint: layer not found")

	// ErrInvalidSize is returned for non-positive surface dimensions.
	ErrInvalidSize = errors.New("paint: invalid size")

	// ErrClosed is returned when a closed Context or LayerStack is used.
	ErrClosed = errors.New("paint: closed")
)
