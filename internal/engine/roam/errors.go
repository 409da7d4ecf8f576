package roam

import "errors"

// Setup errors. Tessellation itself never fails with an error; running out
// of nodes only lowers the detail of the current frame.
var (
	ErrInvalidPoolSize = errors.New("invalid node pool size")
	ErrInvalidMapSize  = errors.New("heightmap size is not a multiple of the patch size")
	ErrInvalidWorkers  = errors.New("invalid tessellation worker count")
)
