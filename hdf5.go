package goconsolidate

import "fmt"

// HDF5Mimetype is the mimetype accepted by the HDF5Consolidator.
const HDF5Mimetype = "application/x-hdf5"

// NewHDF5Consolidator returns a new instance of the HDF5Consolidator. The
// dataset path defaults to the resource data key; single-writer/multi-reader
// mode is enabled unless overridden and file locking stays unset.
func NewHDF5Consolidator(resource Resource, key DataKey, opts ...ConsolidatorOpt) (*HDF5Consolidator, error) {
	if resource.Mimetype != HDF5Mimetype {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("mimetype %s is not supported by the HDF5 consolidator", resource.Mimetype), nil)
	}
	base, err := NewBaseConsolidator(resource, key, opts...)
	if err != nil {
		return nil, err
	}
	c := &HDF5Consolidator{
		BaseConsolidator: *base,
		dataset:          hdf5DatasetPath(resource),
		swmr:             true,
	}
	if resource.Parameters.SWMR != nil {
		c.swmr = *resource.Parameters.SWMR
	}
	c.locking = resource.Parameters.Locking
	// All backing files feed one multi-asset reader parameter, so later
	// extensions append uniformly.
	c.assets = []Asset{{URI: resource.URI, ParameterName: assetParameterMulti, Ordinal: 0}}
	c.adapterParameters = c.AdapterParameters
	return c, nil
}

// HDF5Consolidator consolidates single-container chunked binary resources
// holding one named dataset. It is the only variant that accepts resource
// extensions: additional container files covering the same logical target.
type HDF5Consolidator struct {
	BaseConsolidator
	dataset []string
	swmr    bool
	locking interface{}
}

// hdf5DatasetPath resolves the dataset path of a resource, falling back to
// the data key name.
func hdf5DatasetPath(resource Resource) []string {
	if len(resource.Parameters.Dataset) > 0 {
		return append([]string(nil), resource.Parameters.Dataset...)
	}
	return []string{resource.DataKey}
}

// AdapterParameters returns the dataset path segments plus the
// single-writer/multi-reader and file-locking reader flags, and forwards the
// optional sub-selection parameters.
func (c *HDF5Consolidator) AdapterParameters() map[string]interface{} {
	p := map[string]interface{}{
		"dataset": append([]string(nil), c.dataset...),
		"swmr":    c.swmr,
	}
	if c.locking != nil {
		p["locking"] = c.locking
	}
	if c.resource.Parameters.Slice != nil {
		p["slice"] = c.resource.Parameters.Slice
	}
	if c.resource.Parameters.Squeeze != nil {
		p["squeeze"] = *c.resource.Parameters.Squeeze
	}
	return p
}

// Extend registers an additional container file covering the same logical
// target. The new resource must declare the identical dataset path and chunk
// shape; on success one new asset referencing its URI is appended.
func (c *HDF5Consolidator) Extend(resource Resource) error {
	if resource.Mimetype != c.resource.Mimetype {
		return NewIssue(IssueTypeInconsistentResource, StepExtend,
			fmt.Sprintf("extension mimetype %s disagrees with %s", resource.Mimetype, c.resource.Mimetype), nil)
	}
	if dataset := hdf5DatasetPath(resource); !equalStrings(dataset, c.dataset) {
		return NewIssue(IssueTypeInconsistentResource, StepExtend,
			fmt.Sprintf("extension dataset path %v disagrees with %v", dataset, c.dataset), nil)
	}
	if !equalInts(resource.Parameters.ChunkShape, c.chunkShape) {
		return NewIssue(IssueTypeInconsistentResource, StepExtend,
			fmt.Sprintf("extension chunk shape %v disagrees with %v", resource.Parameters.ChunkShape, c.chunkShape), nil)
	}
	c.assets = append(c.assets, Asset{
		URI:           resource.URI,
		ParameterName: assetParameterMulti,
		Ordinal:       len(c.assets),
	})
	return nil
}
