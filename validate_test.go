package goconsolidate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeReader reports a fixed structure regardless of the snapshot it was
// built from.
type fakeReader struct {
	structure ArrayStructure
	err       error
}

// Structure reads the actual array structure of the physical data.
func (r *fakeReader) Structure() (ArrayStructure, error) {
	return r.structure, r.err
}

func fakeConstructor(structure ArrayStructure) ReaderConstructor {
	return func(snapshot DataSourceSnapshot) (StructureReader, error) {
		return &fakeReader{structure: structure}, nil
	}
}

// buildIngested builds a generic consolidator with the passed parameters and
// schema and ingests the given number of rows.
func buildIngested(t *testing.T, params Parameters, key DataKey, rows int) *BaseConsolidator {
	c, err := NewBaseConsolidator(buildResource(params), key)
	assert.Nil(t, err)
	_, err = c.Ingest(ArrivalNotification{Indices: Range{0, rows}, SeqNums: Range{1, rows + 1}})
	assert.Nil(t, err)
	return c
}

func TestInitReader(t *testing.T) {
	t.Run("NoConstructorAvailable", func(t *testing.T) {
		c, err := NewBaseConsolidator(buildResource(Parameters{}), DataKey{Shape: []int{}})
		assert.Nil(t, err)
		_, err = c.InitReader(nil)
		assert.True(t, IsIssueType(err, IssueTypeInternal))
	})
	t.Run("ExplicitConstructorWins", func(t *testing.T) {
		c, err := NewBaseConsolidator(buildResource(Parameters{}), DataKey{Shape: []int{}},
			ConsolidatorWithReaderConstructor(func(snapshot DataSourceSnapshot) (StructureReader, error) {
				return nil, errors.New("default constructor must not be used")
			}))
		assert.Nil(t, err)
		reader, err := c.InitReader(fakeConstructor(ArrayStructure{}))
		assert.Nil(t, err)
		assert.NotNil(t, reader)
	})
	t.Run("FallsBackToConfiguredConstructor", func(t *testing.T) {
		c, err := NewBaseConsolidator(buildResource(Parameters{}), DataKey{Shape: []int{}},
			ConsolidatorWithReaderConstructor(fakeConstructor(ArrayStructure{})))
		assert.Nil(t, err)
		reader, err := c.InitReader(nil)
		assert.Nil(t, err)
		assert.NotNil(t, reader)
	})
	t.Run("ReceivesCurrentSnapshot", func(t *testing.T) {
		c := buildIngested(t, Parameters{}, DataKey{Shape: []int{}}, 3)
		var seen DataSourceSnapshot
		_, err := c.InitReader(func(snapshot DataSourceSnapshot) (StructureReader, error) {
			seen = snapshot
			return &fakeReader{}, nil
		})
		assert.Nil(t, err)
		assert.Equal(t, []int{3}, seen.Shape)
	})
}

func TestValidate(t *testing.T) {
	t.Run("ConsistentStructurePasses", func(t *testing.T) {
		c := buildIngested(t, Parameters{ChunkShape: []int{3}}, DataKey{Shape: []int{}}, 7)
		notes, err := c.Validate(false, fakeConstructor(ArrayStructure{
			Shape:    []int{7},
			Chunks:   [][]int{{3, 3, 1}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.Nil(t, err)
		assert.Equal(t, 0, len(notes))
	})
	t.Run("ReaderErrorPropagates", func(t *testing.T) {
		c := buildIngested(t, Parameters{}, DataKey{Shape: []int{}}, 1)
		_, err := c.Validate(false, func(snapshot DataSourceSnapshot) (StructureReader, error) {
			return &fakeReader{err: errors.New("file truncated")}, nil
		})
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "file truncated")
	})
	t.Run("ShapeMismatchFails", func(t *testing.T) {
		c := buildIngested(t, Parameters{}, DataKey{Shape: []int{}}, 5)
		_, err := c.Validate(false, fakeConstructor(ArrayStructure{
			Shape:    []int{4},
			Chunks:   [][]int{{4}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.True(t, IsIssueType(err, IssueTypeShapeMismatch))
	})
	t.Run("ShapeMismatchFixedForStack", func(t *testing.T) {
		stack := JoinStack
		c := buildIngested(t, Parameters{JoinMethod: &stack}, DataKey{Shape: []int{8}}, 5)
		notes, err := c.Validate(true, fakeConstructor(ArrayStructure{
			Shape:    []int{4, 6},
			Chunks:   [][]int{{4}, {6}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.Nil(t, err)
		assert.Equal(t, 1, len(notes))
		assert.Equal(t, 4, c.NumRows())
		assert.Equal(t, []int{4, 6}, c.Shape())
	})
	t.Run("ShapeMismatchFixedForConcatInfersMultiplier", func(t *testing.T) {
		// ARRANGE: the data holds 12 frames in chunks of 3, so each of the
		// 4 rows must have produced 3 frames.
		c := buildIngested(t, Parameters{ChunkShape: []int{3}}, DataKey{Shape: []int{}}, 5)

		// ACT
		notes, err := c.Validate(true, fakeConstructor(ArrayStructure{
			Shape:    []int{12, 6},
			Chunks:   [][]int{{3, 3, 3, 3}, {6}},
			DataType: DataType{Scalar: "float64"},
		}))

		// ASSERT
		assert.Nil(t, err)
		assert.Equal(t, 1, len(notes))
		assert.Equal(t, 4, c.NumRows())
		assert.Equal(t, []int{12, 6}, c.Shape())
	})
	t.Run("ChunkMismatchFails", func(t *testing.T) {
		c := buildIngested(t, Parameters{ChunkShape: []int{3}}, DataKey{Shape: []int{}}, 7)
		_, err := c.Validate(false, fakeConstructor(ArrayStructure{
			Shape:    []int{7},
			Chunks:   [][]int{{2, 2, 2, 1}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.True(t, IsIssueType(err, IssueTypeChunkMismatch))
	})
	t.Run("ChunkMismatchFixedFromFirstChunks", func(t *testing.T) {
		c := buildIngested(t, Parameters{ChunkShape: []int{3}}, DataKey{Shape: []int{}}, 8)
		notes, err := c.Validate(true, fakeConstructor(ArrayStructure{
			Shape:    []int{8},
			Chunks:   [][]int{{2, 2, 2, 2}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.Nil(t, err)
		assert.Equal(t, 1, len(notes))
		chunks, err := c.Chunks()
		assert.Nil(t, err)
		assert.Equal(t, [][]int{{2, 2, 2, 2}}, chunks)
	})
	t.Run("DataTypeMismatchFails", func(t *testing.T) {
		c := buildIngested(t, Parameters{}, DataKey{Shape: []int{}}, 1)
		_, err := c.Validate(false, fakeConstructor(ArrayStructure{
			Shape:    []int{1},
			Chunks:   [][]int{{1}},
			DataType: DataType{Scalar: "int32"},
		}))
		assert.True(t, IsIssueType(err, IssueTypeDtypeMismatch))
	})
	t.Run("DataTypeMismatchFixed", func(t *testing.T) {
		c := buildIngested(t, Parameters{}, DataKey{Shape: []int{}}, 1)
		notes, err := c.Validate(true, fakeConstructor(ArrayStructure{
			Shape:    []int{1},
			Chunks:   [][]int{{1}},
			DataType: DataType{Scalar: "int32"},
		}))
		assert.Nil(t, err)
		assert.Equal(t, 1, len(notes))
		assert.Equal(t, DataType{Scalar: "int32"}, c.DataType())
	})
	t.Run("DimCountMismatchFails", func(t *testing.T) {
		c := buildIngested(t, Parameters{}, DataKey{Shape: []int{4}, Dims: []string{"x", "y", "z"}}, 2)
		_, err := c.Validate(false, fakeConstructor(ArrayStructure{
			Shape:    []int{8},
			Chunks:   [][]int{{8}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.True(t, IsIssueType(err, IssueTypeDimCountMismatch))
	})
	t.Run("ShortDimsPaddedWithLeadingTime", func(t *testing.T) {
		stack := JoinStack
		c := buildIngested(t, Parameters{JoinMethod: &stack},
			DataKey{Shape: []int{16, 16}, Dims: []string{"x"}}, 2)
		notes, err := c.Validate(true, fakeConstructor(ArrayStructure{
			Shape:    []int{2, 16, 16},
			Chunks:   [][]int{{2}, {16}, {16}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.Nil(t, err)
		assert.Equal(t, 1, len(notes))
		assert.Equal(t, []string{"time", "x", "dim2"}, c.Dims())
	})
	t.Run("LongDimsTruncated", func(t *testing.T) {
		c := buildIngested(t, Parameters{},
			DataKey{Shape: []int{4}, Dims: []string{"x", "y", "z"}}, 2)
		notes, err := c.Validate(true, fakeConstructor(ArrayStructure{
			Shape:    []int{8},
			Chunks:   [][]int{{8}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.Nil(t, err)
		assert.Equal(t, 1, len(notes))
		assert.Equal(t, []string{"x"}, c.Dims())
	})
	t.Run("UndeclaredDimsNeverChecked", func(t *testing.T) {
		c := buildIngested(t, Parameters{}, DataKey{Shape: []int{4}}, 2)
		notes, err := c.Validate(false, fakeConstructor(ArrayStructure{
			Shape:    []int{8},
			Chunks:   [][]int{{8}},
			DataType: DataType{Scalar: "float64"},
		}))
		assert.Nil(t, err)
		assert.Equal(t, 0, len(notes))
	})
}
