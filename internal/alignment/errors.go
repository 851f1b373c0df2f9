// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package alignment

import "errors"

// ErrInvalidArgument is the sentinel for a caller-supplied value this
// package can't act on. No function in this package returns it; the
// diagnostic export holds alignment points only, not a matrix.
var ErrInvalidArgument = errors.New("alignment: invalid argument")

// ErrNoReferencePoint is returned by GotoApproximate when the store has
// no recorded points to compute a delta from.
var ErrNoReferencePoint = errors.New("alignment: no recorded alignment point")
