package goconsolidate

import (
	"fmt"

	"github.com/divideandconquer/go-merge/merge"
	"go.uber.org/zap"
)

// Consolidator accumulates arrival notifications for one resource and
// derives the logical array shape, chunk layout and physical file manifest
// needed to read the growing data back randomly. A consolidator is created
// exactly once per resource, is never shared between resources and must be
// driven by a single writer at a time.
type Consolidator interface {
	// Mimetype returns the mimetype of the consolidated resource.
	Mimetype() string
	// DataKeyName returns the name of the measured quantity.
	DataKeyName() string
	// NumRows returns the number of rows accumulated so far.
	NumRows() int
	// Shape returns the current logical array shape.
	Shape() []int
	// Chunks returns, per dimension, the list of chunk sizes covering the
	// current shape. The last chunk of a dimension may be smaller than the
	// rest.
	Chunks() ([][]int, error)
	// Dims returns the declared dimension names, if any.
	Dims() []string
	// DataType returns the element type of the logical array.
	DataType() DataType
	// HasSkips reports whether some logical row numbers were never observed.
	HasSkips() bool
	// Assets returns the ordered list of physical files produced so far.
	Assets() []Asset
	// AdapterParameters returns the reader-facing parameter bag of the
	// consolidator variant.
	AdapterParameters() map[string]interface{}
	// Ingest registers a block of newly written rows and returns the patch
	// of the logical array the block covers. Re-ingesting the same
	// notification double-counts rows; callers must not replay.
	Ingest(notification ArrivalNotification) (Patch, error)
	// Snapshot assembles the current catalog-facing description of the
	// resource. It does not mutate consolidator state.
	Snapshot() (DataSourceSnapshot, error)
	// Extend registers an additional resource covering the same logical
	// target. Only variants that support multiple backing files accept it.
	Extend(resource Resource) error
	// InitReader builds an independent structure reader from the current
	// snapshot. A nil constructor falls back to the configured default.
	InitReader(rc ReaderConstructor) (StructureReader, error)
	// Validate compares the consolidator's derived structure against the
	// actual data behind the asset URIs and, when fixErrors is set, corrects
	// the consolidator state instead of failing. It returns one
	// human-readable note per applied correction.
	Validate(fixErrors bool, rc ReaderConstructor) ([]string, error)
	// State returns the serializable form of the consolidator for
	// persistence once the owning run is closed.
	State() ConsolidatorState
	// LoadState restores a previously serialized consolidator state.
	LoadState(state ConsolidatorState) error
}

// ConsolidatorOpt is a type that modifies the default BaseConsolidator
// behaviour. Variant constructors apply their defaults through opts before
// the resource parameters are read, so explicit resource parameters always
// win.
type ConsolidatorOpt func(c *BaseConsolidator)

// ConsolidatorWithJoinDefaults overrides the default join method and chunk
// joining behaviour of the consolidator.
var ConsolidatorWithJoinDefaults = func(method JoinMethod, joinChunks bool) func(c *BaseConsolidator) {
	return func(c *BaseConsolidator) {
		c.joinMethod = method
		c.joinChunks = joinChunks
	}
}

// ConsolidatorWithLogger enhances the consolidator with the passed logger.
var ConsolidatorWithLogger = func(logger *zap.Logger) func(c *BaseConsolidator) {
	return func(c *BaseConsolidator) {
		c.logger = logger
	}
}

// ConsolidatorWithReaderConstructor sets the default reader constructor used
// by InitReader and Validate when the caller passes none.
var ConsolidatorWithReaderConstructor = func(rc ReaderConstructor) func(c *BaseConsolidator) {
	return func(c *BaseConsolidator) {
		c.readerConstructor = rc
	}
}

// ConsolidatorWithAdapterParameters replaces the reader-facing parameter bag
// builder. Variant constructors use it to expose their own parameters through
// the base Snapshot method.
var ConsolidatorWithAdapterParameters = func(params func() map[string]interface{}) func(c *BaseConsolidator) {
	return func(c *BaseConsolidator) {
		c.adapterParameters = params
	}
}

// NewBaseConsolidator constructs the generic consolidator state machine for
// the passed resource and per-row schema. It rejects schemas with unresolved
// dimensions and chunk shapes with non-positive entries, reconciles a
// declared multiplier against the per-row shape, derives the element type
// and registers one default asset pointing at the resource base URI.
func NewBaseConsolidator(resource Resource, key DataKey, opts ...ConsolidatorOpt) (*BaseConsolidator, error) {
	c := &BaseConsolidator{
		resource:   resource,
		dataKey:    key,
		datumShape: copyInts(key.Shape),
		dims:       append([]string(nil), key.Dims...),
		joinMethod: JoinConcat,
		joinChunks: true,
		seqIndex:   make(map[int]int),
		logger:     buildDefaultLogger(resource.Mimetype),
	}
	c.adapterParameters = c.AdapterParameters
	for _, opt := range opts {
		opt(c)
	}
	for _, dim := range c.datumShape {
		if dim < 0 {
			return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
				fmt.Sprintf("resource %s declares a variable-sized per-row dimension in shape %v", resource.UID, key.Shape), nil)
		}
	}
	params := resource.Parameters
	if params.JoinMethod != nil {
		if err := params.JoinMethod.Valid(); err != nil {
			return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
				fmt.Sprintf("resource %s declares join method %q", resource.UID, *params.JoinMethod), err)
		}
		c.joinMethod = *params.JoinMethod
	}
	if params.JoinChunks != nil {
		c.joinChunks = *params.JoinChunks
	}
	// A stacked single scalar per row has no extra per-row dimension.
	if equalInts(c.datumShape, []int{1}) && c.joinMethod == JoinStack {
		c.datumShape = []int{}
	}
	if params.Multiplier != nil {
		c.reconcileMultiplier(*params.Multiplier)
	}
	dataType, err := buildDataType(key)
	if err != nil {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("resource %s declares a malformed type descriptor", resource.UID), err)
	}
	c.dataType = dataType
	for _, dim := range params.ChunkShape {
		if dim <= 0 {
			return nil, NewIssue(IssueTypeInvalidChunkShape, StepConstruct,
				fmt.Sprintf("resource %s declares chunk shape %v with a non-positive entry", resource.UID, params.ChunkShape), nil)
		}
	}
	c.chunkShape = copyInts(params.ChunkShape)
	c.assets = []Asset{{URI: resource.URI, ParameterName: assetParameterSingle}}
	return c, nil
}

// BaseConsolidator is the generic consolidator state machine. It must be
// embedded into all consolidator variants.
type BaseConsolidator struct {
	resource          Resource
	dataKey           DataKey
	numRows           int
	seqIndex          map[int]int
	datumShape        []int
	dataType          DataType
	chunkShape        []int
	joinMethod        JoinMethod
	joinChunks        bool
	dims              []string
	assets            []Asset
	adapterParameters func() map[string]interface{}
	readerConstructor ReaderConstructor
	logger            *zap.Logger
}

// reconcileMultiplier merges a declared rows-per-datum multiplier into the
// per-row shape, tolerating inconsistent upstream metadata: a matching
// leading dimension is left alone, a leading 1 is replaced by the multiplier,
// anything else gets the multiplier as an additional leading dimension.
func (c *BaseConsolidator) reconcileMultiplier(multiplier int) {
	switch {
	case len(c.datumShape) == 0:
		c.datumShape = []int{multiplier}
	case c.datumShape[0] == multiplier:
		// Shape and multiplier already agree.
	case c.datumShape[0] == 1:
		c.datumShape = append([]int{multiplier}, c.datumShape[1:]...)
	default:
		c.datumShape = append([]int{multiplier}, c.datumShape...)
	}
}

// Mimetype returns the mimetype of the consolidated resource.
func (c *BaseConsolidator) Mimetype() string {
	return c.resource.Mimetype
}

// DataKeyName returns the name of the measured quantity.
func (c *BaseConsolidator) DataKeyName() string {
	return c.resource.DataKey
}

// NumRows returns the number of rows accumulated so far.
func (c *BaseConsolidator) NumRows() int {
	return c.numRows
}

// Resource returns the resource descriptor the consolidator was built from.
func (c *BaseConsolidator) Resource() Resource {
	return c.resource
}

// Dims returns the declared dimension names, if any.
func (c *BaseConsolidator) Dims() []string {
	return append([]string(nil), c.dims...)
}

// DataType returns the element type of the logical array.
func (c *BaseConsolidator) DataType() DataType {
	return c.dataType
}

// Assets returns the ordered list of physical files produced so far.
func (c *BaseConsolidator) Assets() []Asset {
	return append([]Asset(nil), c.assets...)
}

// HasSkips reports whether some logical row numbers were never observed:
// either the accumulated row count exceeds the number of observed sequence
// numbers, or the observed sequence numbers span a wider range than their
// count, i.e. the instrument skipped points.
func (c *BaseConsolidator) HasSkips() bool {
	if c.numRows > len(c.seqIndex) {
		return true
	}
	if len(c.seqIndex) == 0 {
		return false
	}
	first := true
	var min, max int
	for seq := range c.seqIndex {
		if first || seq < min {
			min = seq
		}
		if first || seq > max {
			max = seq
		}
		first = false
	}
	return max-min+1 > len(c.seqIndex)
}

// Shape returns the current logical array shape. Under concat join, rows are
// flattened along the existing leading per-row dimension; under stack join,
// or for zero-dimensional rows, the row count forms a fresh leading
// dimension.
func (c *BaseConsolidator) Shape() []int {
	if c.joinMethod == JoinConcat && len(c.datumShape) > 0 {
		return append([]int{c.numRows * c.datumShape[0]}, c.datumShape[1:]...)
	}
	return append([]int{c.numRows}, c.datumShape...)
}

// chunkDim splits a dimension extent into chunks of the given size, the last
// chunk carrying the division remainder.
func chunkDim(extent, size int) []int {
	if extent == 0 {
		return []int{0}
	}
	chunks := make([]int, 0, extent/size+1)
	for i := 0; i < extent/size; i++ {
		chunks = append(chunks, size)
	}
	if rem := extent % size; rem > 0 {
		chunks = append(chunks, rem)
	}
	return chunks
}

// Chunks returns, per dimension, the list of chunk sizes covering the current
// shape. Dimensions not covered by the declared chunk shape span one single
// chunk. Under concat join without chunk joining, the leading dimension
// repeats the per-row chunk pattern once per accumulated row; chunk
// boundaries never merge across rows even when they would align.
func (c *BaseConsolidator) Chunks() ([][]int, error) {
	shape := c.Shape()
	if len(c.chunkShape) > len(shape) {
		return nil, NewIssue(IssueTypeInvalidChunkShape, StepSnapshot,
			fmt.Sprintf("chunk shape %v has more dimensions than data shape %v", c.chunkShape, shape), nil)
	}
	chunks := make([][]int, len(shape))
	covered := len(c.chunkShape)
	if c.joinMethod == JoinStack || c.joinChunks || covered == 0 {
		for d := 0; d < covered; d++ {
			chunks[d] = chunkDim(shape[d], c.chunkShape[d])
		}
	} else {
		rowExtent := 1
		if len(c.datumShape) > 0 {
			rowExtent = c.datumShape[0]
		}
		pattern := chunkDim(rowExtent, c.chunkShape[0])
		if c.numRows == 0 {
			chunks[0] = []int{0}
		} else {
			leading := make([]int, 0, len(pattern)*c.numRows)
			for row := 0; row < c.numRows; row++ {
				leading = append(leading, pattern...)
			}
			chunks[0] = leading
		}
		for d := 1; d < covered; d++ {
			chunks[d] = chunkDim(shape[d], c.chunkShape[d])
		}
	}
	for d := covered; d < len(shape); d++ {
		chunks[d] = []int{shape[d]}
	}
	return chunks, nil
}

// Ingest registers a block of newly written rows: the row counter grows by
// the physical index range length and the logical row numbers are mapped to
// their physical indices. It returns the patch of the logical array the new
// rows cover.
func (c *BaseConsolidator) Ingest(notification ArrivalNotification) (Patch, error) {
	oldShape := c.Shape()
	c.numRows += notification.Indices.Len()
	seq, idx := notification.SeqNums.Start, notification.Indices.Start
	for seq < notification.SeqNums.Stop && idx < notification.Indices.Stop {
		c.seqIndex[seq] = idx
		seq++
		idx++
	}
	newShape := c.Shape()
	offset := make([]int, len(newShape))
	offset[0] = oldShape[0]
	shape := append([]int{newShape[0] - oldShape[0]}, newShape[1:]...)
	return Patch{Offset: offset, Shape: shape}, nil
}

// AdapterParameters returns the reader-facing parameter bag. The generic
// consolidator has none; variants expose their own.
func (c *BaseConsolidator) AdapterParameters() map[string]interface{} {
	return map[string]interface{}{}
}

// Snapshot assembles the current catalog-facing description of the resource.
// The variant's adapter parameters are merged over the resource's unknown
// extra parameters, so upstream fields this core does not model still reach
// the reader.
func (c *BaseConsolidator) Snapshot() (DataSourceSnapshot, error) {
	chunks, err := c.Chunks()
	if err != nil {
		return DataSourceSnapshot{}, err
	}
	params := make(map[string]interface{}, len(c.resource.Parameters.Extra))
	for k, v := range c.resource.Parameters.Extra {
		params[k] = v
	}
	params = merge.Merge(params, c.adapterParameters()).(map[string]interface{})
	return DataSourceSnapshot{
		Mimetype:          c.resource.Mimetype,
		Assets:            c.Assets(),
		StructureFamily:   structureFamilyArray,
		Shape:             c.Shape(),
		Chunks:            chunks,
		Dims:              c.Dims(),
		AdapterParameters: params,
		Management:        managementExternal,
	}, nil
}

// Extend rejects additional resources: the generic consolidator covers
// exactly one physical storage target. Variants backed by multiple files
// redefine it.
func (c *BaseConsolidator) Extend(resource Resource) error {
	return NewIssue(IssueTypeUnsupportedFormat, StepExtend,
		fmt.Sprintf("mimetype %s does not support resource extension", c.resource.Mimetype), nil)
}

// Logger returns the logger used alongside the consolidator.
func (c *BaseConsolidator) Logger() *zap.Logger {
	return c.logger
}
