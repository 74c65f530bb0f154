package alloc

import "errors"

var (
	// ErrRegionTooSmall indicates an arena region could not be reserved at any size.
	ErrRegionTooSmall = errors.New("alloc: arena region allocation failed")

	// ErrReleased indicates an operation on an arena whose region was released.
	ErrReleased = errors.New("alloc: arena released")
)
