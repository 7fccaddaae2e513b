package goconsolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildCSVResource(params Parameters) Resource {
	return Resource{
		UID:        "csv-1",
		Mimetype:   CSVMimetype,
		DataKey:    "table",
		URI:        "file:///data/run1/table.csv",
		Parameters: params,
	}
}

func TestNewCSVConsolidator(t *testing.T) {
	t.Run("RejectsForeignMimetype", func(t *testing.T) {
		resource := buildCSVResource(Parameters{})
		resource.Mimetype = HDF5Mimetype
		_, err := NewCSVConsolidator(resource, DataKey{Shape: []int{}})
		assert.True(t, IsIssueType(err, IssueTypeUnsupportedFormat))
	})
	t.Run("ForcesRowwiseConcatenation", func(t *testing.T) {
		// ARRANGE: tabular data ignores any declared join method.
		stack := JoinStack
		c, err := NewCSVConsolidator(
			buildCSVResource(Parameters{ChunkShape: []int{1}, JoinMethod: &stack, JoinChunks: boolPtr(true)}),
			DataKey{Shape: []int{1}},
		)
		assert.Nil(t, err)

		// ACT
		_, err = c.Ingest(ArrivalNotification{Indices: Range{0, 3}, SeqNums: Range{1, 4}})
		assert.Nil(t, err)
		chunks, err := c.Chunks()
		assert.Nil(t, err)

		// ASSERT: one chunk per appended row, never merged.
		assert.Equal(t, []int{3}, c.Shape())
		assert.Equal(t, [][]int{{1, 1, 1}}, chunks)
	})
}

func TestCSVAdapterParameters(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := NewCSVConsolidator(buildCSVResource(Parameters{}), DataKey{Shape: []int{1}})
		assert.Nil(t, err)
		assert.Equal(t, map[string]interface{}{"header": false}, c.AdapterParameters())
	})
	t.Run("ForwardsWhitelistedParameters", func(t *testing.T) {
		c, err := NewCSVConsolidator(buildCSVResource(Parameters{
			Header:    boolPtr(true),
			Delimiter: ";",
			Names:     []string{"motor", "det"},
			SkipRows:  intPtr(2),
			Encoding:  "latin-1",
		}), DataKey{Shape: []int{1}})
		assert.Nil(t, err)
		assert.Equal(t, map[string]interface{}{
			"header":    true,
			"delimiter": ";",
			"names":     []string{"motor", "det"},
			"skip_rows": 2,
			"encoding":  "latin-1",
		}, c.AdapterParameters())
	})
	t.Run("ReachesSnapshotThroughEmbedding", func(t *testing.T) {
		c, err := NewCSVConsolidator(buildCSVResource(Parameters{Delimiter: "\t"}), DataKey{Shape: []int{1}})
		assert.Nil(t, err)
		snapshot, err := c.Snapshot()
		assert.Nil(t, err)
		assert.Equal(t, "\t", snapshot.AdapterParameters["delimiter"])
	})
}
