// Package selection implements the indexer: translating a
// hyper-rectangular selection over the logical array into the sequence
// of per-chunk (chunk coordinate, within-chunk slice, within-output
// slice) triples the array engine drives.
package selection

import (
	"fmt"

	"github.com/rmalhotra/zarrcore/zarrerr"
)

// AxisSlice is one axis of a Selection: [Start, Stop) with unit step
// (non-unit steps are out of scope for this engine).
type AxisSlice struct {
	Start int64
	Stop  int64
}

// Len returns the number of indices the slice selects.
func (s AxisSlice) Len() int64 {
	if s.Stop <= s.Start {
		return 0
	}
	return s.Stop - s.Start
}

// Selection is a hyper-rectangular sub-region, one AxisSlice per dimension.
type Selection []AxisSlice

// OutputShape is the shape of the array a Selection reads into or writes
// from: per axis, ⌈(stop-start)/step⌉, with step fixed at 1.
func (s Selection) OutputShape() []int64 {
	shape := make([]int64, len(s))
	for i, ax := range s {
		shape[i] = ax.Len()
	}
	return shape
}

// Full returns the Selection covering the entire array of the given shape.
func Full(shape []int64) Selection {
	sel := make(Selection, len(shape))
	for i, s := range shape {
		sel[i] = AxisSlice{Start: 0, Stop: s}
	}
	return sel
}

// Validate checks sel against shape: same rank, and every axis within
// [0, shape[i]].
func Validate(sel Selection, shape []int64) error {
	if len(sel) != len(shape) {
		return fmt.Errorf("selection: %w: rank mismatch: selection has %d axes, array has %d", zarrerr.Argument, len(sel), len(shape))
	}
	for i, ax := range sel {
		if ax.Start < 0 || ax.Stop < ax.Start || ax.Stop > shape[i] {
			return fmt.Errorf("selection: %w: axis %d slice [%d:%d] out of bounds for dimension size %d", zarrerr.Argument, i, ax.Start, ax.Stop, shape[i])
		}
	}
	return nil
}
