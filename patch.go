package goconsolidate

import "fmt"

// Patch describes the rectangular block of rows added to a logical array by
// a single ingestion step: an offset per dimension and the extent of the
// block along each dimension. A Patch is a plain value, it carries no
// identity and no reference to the consolidator that produced it.
type Patch struct {
	Offset []int
	Shape  []int
}

// NDim returns the dimensionality of the patch.
func (p Patch) NDim() int {
	return len(p.Shape)
}

// CombinePatches returns the smallest patch covering all the passed patches.
// Per dimension, the result offset is the minimum of the input offsets and
// the result extent reaches to the maximum of the input upper bounds. The
// passed list must be non-empty and all patches must share the same
// dimensionality.
func CombinePatches(patches []Patch) (Patch, error) {
	if len(patches) == 0 {
		return Patch{}, fmt.Errorf("cannot combine an empty list of patches")
	}
	ndim := patches[0].NDim()
	mins := make([]int, ndim)
	maxs := make([]int, ndim)
	copy(mins, patches[0].Offset)
	for d := 0; d < ndim; d++ {
		maxs[d] = patches[0].Offset[d] + patches[0].Shape[d]
	}
	for _, p := range patches[1:] {
		if p.NDim() != ndim {
			return Patch{}, fmt.Errorf("cannot combine patches of dimensionality %d and %d", ndim, p.NDim())
		}
		for d := 0; d < ndim; d++ {
			if p.Offset[d] < mins[d] {
				mins[d] = p.Offset[d]
			}
			if upper := p.Offset[d] + p.Shape[d]; upper > maxs[d] {
				maxs[d] = upper
			}
		}
	}
	shape := make([]int, ndim)
	for d := 0; d < ndim; d++ {
		shape[d] = maxs[d] - mins[d]
	}
	return Patch{Offset: mins, Shape: shape}, nil
}
