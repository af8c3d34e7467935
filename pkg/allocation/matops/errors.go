package matops

import "errors"

// errSingular is wrapped into roverrors.ErrGeometry by callers in
// pkg/allocation/matrix; kept internal here so matops has no dependency on
// the error-kind package.
var errSingular = errors.New("matops: matrix is singular or has invalid dimensions")

// ErrSingular is the exported form callers can match against.
var ErrSingular = errSingular
