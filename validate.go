package goconsolidate

import (
	"fmt"

	"github.com/go-test/deep"
	"go.uber.org/zap"
)

// ArrayStructure is the structure of the physical data as reported by an
// independent reader: the ground truth the consolidator's derived values are
// validated against.
type ArrayStructure struct {
	Shape    []int
	Chunks   [][]int
	DataType DataType
	Dims     []string
}

// StructureReader is an independent, out-of-process view on the physical
// data behind a snapshot. Concrete readers belong to the adapter layer; this
// core only consumes the reported structure.
type StructureReader interface {
	// Structure reads the actual array structure of the physical data.
	Structure() (ArrayStructure, error)
}

// ReaderConstructor builds a structure reader from a snapshot. Bounding the
// I/O the reader performs is the constructor's responsibility.
type ReaderConstructor func(snapshot DataSourceSnapshot) (StructureReader, error)

// InitReader builds an independent structure reader from the current
// snapshot. A nil constructor falls back to the constructor configured on
// the consolidator.
func (c *BaseConsolidator) InitReader(rc ReaderConstructor) (StructureReader, error) {
	if rc == nil {
		rc = c.readerConstructor
	}
	if rc == nil {
		return nil, NewIssue(IssueTypeInternal, StepValidate,
			fmt.Sprintf("no reader constructor available for mimetype %s", c.resource.Mimetype), nil)
	}
	snapshot, err := c.Snapshot()
	if err != nil {
		return nil, err
	}
	return rc(snapshot)
}

// Validate opens the data at the current asset URIs through an independent
// reader and compares its actual shape, chunking, data type and rank against
// the consolidator's derived values. Without fixErrors the first mismatch
// fails; with fixErrors each mismatch corrects the consolidator state and is
// recorded as a human-readable note instead. After any applied fix a reader
// must be constructible from the corrected snapshot, else the consolidator
// state is internally inconsistent.
func (c *BaseConsolidator) Validate(fixErrors bool, rc ReaderConstructor) ([]string, error) {
	reader, err := c.InitReader(rc)
	if err != nil {
		return nil, err
	}
	actual, err := reader.Structure()
	if err != nil {
		return nil, err
	}
	var notes []string
	if note, err := c.validateShape(actual, fixErrors); err != nil {
		return notes, err
	} else if note != "" {
		notes = append(notes, note)
	}
	if note, err := c.validateChunks(actual, fixErrors); err != nil {
		return notes, err
	} else if note != "" {
		notes = append(notes, note)
	}
	if note, err := c.validateDataType(actual, fixErrors); err != nil {
		return notes, err
	} else if note != "" {
		notes = append(notes, note)
	}
	if note, err := c.validateDims(actual, fixErrors); err != nil {
		return notes, err
	} else if note != "" {
		notes = append(notes, note)
	}
	if len(notes) > 0 {
		for _, note := range notes {
			c.logger.Info("validation fix applied", zap.String("resource", c.resource.UID), zap.String("note", note))
		}
		if _, err := c.InitReader(rc); err != nil {
			return notes, NewIssue(IssueTypeInternal, StepValidate,
				"a reader could not be constructed from the corrected snapshot", err)
		}
	}
	return notes, nil
}

// validateShape compares the derived shape against the actual one. When
// fixing, the row count and per-row shape are re-derived from the actual
// shape: directly for stack join, through a multiplier inferred from the
// actual leading chunk size for concat join.
func (c *BaseConsolidator) validateShape(actual ArrayStructure, fixErrors bool) (string, error) {
	expected := c.Shape()
	if equalInts(expected, actual.Shape) {
		return "", nil
	}
	if !fixErrors {
		return "", NewIssue(IssueTypeShapeMismatch, StepValidate,
			fmt.Sprintf("expected shape %v but the data has shape %v", expected, actual.Shape), nil)
	}
	if len(actual.Shape) == 0 {
		return "", NewIssue(IssueTypeInternal, StepValidate,
			"the data reports a zero-rank shape; nothing can be corrected", nil)
	}
	if c.joinMethod == JoinStack {
		c.numRows = actual.Shape[0]
		c.datumShape = copyInts(actual.Shape[1:])
	} else {
		multiplier := 1
		if len(actual.Chunks) > 0 && len(actual.Chunks[0]) > 0 {
			if lead := actual.Chunks[0][0]; lead > 0 && actual.Shape[0]%lead == 0 {
				multiplier = lead
			}
		}
		c.numRows = actual.Shape[0] / multiplier
		c.datumShape = append([]int{multiplier}, actual.Shape[1:]...)
	}
	return fmt.Sprintf("corrected shape from %v to %v", expected, actual.Shape), nil
}

// validateChunks compares the derived chunking against the actual one. When
// fixing, the per-dimension first-chunk sizes of the data become the new
// declared chunk shape.
func (c *BaseConsolidator) validateChunks(actual ArrayStructure, fixErrors bool) (string, error) {
	expected, err := c.Chunks()
	if err != nil {
		return "", err
	}
	diff := deep.Equal(expected, actual.Chunks)
	if diff == nil {
		return "", nil
	}
	if !fixErrors {
		return "", NewIssue(IssueTypeChunkMismatch, StepValidate,
			fmt.Sprintf("expected chunks %v but the data has chunks %v: %v", expected, actual.Chunks, diff), nil)
	}
	chunkShape := make([]int, 0, len(actual.Chunks))
	for _, dim := range actual.Chunks {
		if len(dim) == 0 {
			return "", NewIssue(IssueTypeInternal, StepValidate,
				fmt.Sprintf("the data reports an empty chunk list in %v", actual.Chunks), nil)
		}
		chunkShape = append(chunkShape, dim[0])
	}
	c.chunkShape = chunkShape
	return fmt.Sprintf("corrected chunk shape from %v to %v", expected, chunkShape), nil
}

// validateDataType compares the derived element type against the actual one,
// adopting the reader's type when fixing.
func (c *BaseConsolidator) validateDataType(actual ArrayStructure, fixErrors bool) (string, error) {
	if c.dataType.Equal(actual.DataType) {
		return "", nil
	}
	if !fixErrors {
		return "", NewIssue(IssueTypeDtypeMismatch, StepValidate,
			fmt.Sprintf("expected data type %s but the data has type %s", c.dataType, actual.DataType), nil)
	}
	note := fmt.Sprintf("corrected data type from %s to %s", c.dataType, actual.DataType)
	c.dataType = actual.DataType
	return note, nil
}

// validateDims compares the declared dimension name count against the actual
// rank. When fixing, a too-short list is padded with a leading "time"
// dimension plus synthesized names, and a too-long list is truncated.
func (c *BaseConsolidator) validateDims(actual ArrayStructure, fixErrors bool) (string, error) {
	rank := len(actual.Shape)
	if len(c.dims) == 0 || len(c.dims) == rank {
		return "", nil
	}
	if !fixErrors {
		return "", NewIssue(IssueTypeDimCountMismatch, StepValidate,
			fmt.Sprintf("%d dimension names are declared but the data has rank %d", len(c.dims), rank), nil)
	}
	old := c.Dims()
	if len(c.dims) < rank {
		dims := append([]string{"time"}, c.dims...)
		for i := len(dims); i < rank; i++ {
			dims = append(dims, fmt.Sprintf("dim%d", i))
		}
		c.dims = dims[:rank]
	} else {
		c.dims = c.dims[:rank]
	}
	return fmt.Sprintf("corrected dimension names from %v to %v", old, c.dims), nil
}
