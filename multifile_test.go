package goconsolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildSequenceResource(mimetype string, params Parameters) Resource {
	return Resource{
		UID:        "seq-1",
		Mimetype:   mimetype,
		DataKey:    "frames",
		URI:        "file:///data/run1/frames/",
		Parameters: params,
	}
}

func TestNewTIFFConsolidator(t *testing.T) {
	t.Run("RejectsForeignMimetype", func(t *testing.T) {
		_, err := NewTIFFConsolidator(
			buildSequenceResource(JPEGSequenceMimetype, Parameters{}),
			DataKey{Shape: []int{512, 512}},
		)
		assert.True(t, IsIssueType(err, IssueTypeUnsupportedFormat))
	})
	t.Run("RejectsTemplateWithWrongExtension", func(t *testing.T) {
		_, err := NewTIFFConsolidator(
			buildSequenceResource(TIFFSequenceMimetype, Parameters{Template: "%05d.png"}),
			DataKey{Shape: []int{512, 512}},
		)
		assert.True(t, IsIssueType(err, IssueTypeUnsupportedFormat))
	})
	t.Run("RejectsIndivisibleFrameCount", func(t *testing.T) {
		// 3 frames per row cannot be spread over files of 2 frames each.
		_, err := NewTIFFConsolidator(
			buildSequenceResource(TIFFSequenceMimetype, Parameters{ChunkShape: []int{2}}),
			DataKey{Shape: []int{3, 512, 512}},
		)
		assert.True(t, IsIssueType(err, IssueTypeInvalidChunkShape))
	})
	t.Run("StartsWithoutAssets", func(t *testing.T) {
		c, err := NewTIFFConsolidator(
			buildSequenceResource(TIFFSequenceMimetype, Parameters{}),
			DataKey{Shape: []int{512, 512}},
		)
		assert.Nil(t, err)
		assert.Equal(t, []Asset{}, c.Assets())
	})
}

func TestMultiFileIngest(t *testing.T) {
	t.Run("OneAssetPerFileInFileOrder", func(t *testing.T) {
		// ARRANGE: 3 frames per row, 1 frame per file.
		c, err := NewTIFFConsolidator(
			buildSequenceResource(TIFFSequenceMimetype, Parameters{}),
			DataKey{Shape: []int{3, 512, 512}},
		)
		assert.Nil(t, err)
		assert.Equal(t, 3, c.FilesPerRow())

		// ACT
		patch, err := c.Ingest(ArrivalNotification{Indices: Range{0, 2}, SeqNums: Range{1, 3}})
		assert.Nil(t, err)

		// ASSERT
		assert.Equal(t, Patch{Offset: []int{0, 0, 0}, Shape: []int{6, 512, 512}}, patch)
		assets := c.Assets()
		if assert.Equal(t, 6, len(assets)) {
			assert.Equal(t, "file:///data/run1/frames/00000.tif", assets[0].URI)
			assert.Equal(t, "file:///data/run1/frames/00005.tif", assets[5].URI)
			for i, asset := range assets {
				assert.Equal(t, i, asset.Ordinal)
				assert.Equal(t, "data_uris", asset.ParameterName)
			}
		}
	})
	t.Run("MultipleFramesPerFile", func(t *testing.T) {
		c, err := NewTIFFConsolidator(
			buildSequenceResource(TIFFSequenceMimetype, Parameters{ChunkShape: []int{2}}),
			DataKey{Shape: []int{4, 32, 32}},
		)
		assert.Nil(t, err)
		assert.Equal(t, 2, c.FilesPerRow())
		_, err = c.Ingest(ArrivalNotification{Indices: Range{0, 3}, SeqNums: Range{1, 4}})
		assert.Nil(t, err)
		assert.Equal(t, 6, len(c.Assets()))
	})
	t.Run("CustomTemplate", func(t *testing.T) {
		c, err := NewJPEGConsolidator(
			buildSequenceResource(JPEGSequenceMimetype, Parameters{Template: "frame_%03d.jpg"}),
			DataKey{Shape: []int{64, 64}},
		)
		assert.Nil(t, err)
		_, err = c.Ingest(ArrivalNotification{Indices: Range{0, 1}, SeqNums: Range{1, 2}})
		assert.Nil(t, err)
		if assert.Equal(t, 1, len(c.Assets())) {
			assert.Equal(t, "file:///data/run1/frames/frame_000.jpg", c.Assets()[0].URI)
		}
		assert.Equal(t, "frame_{:03d}.jpg", c.AdapterParameters()["template"])
	})
}

func TestNewNPYConsolidator(t *testing.T) {
	t.Run("StacksUnderHardCodedTemplate", func(t *testing.T) {
		// ARRANGE: the declared template and chunk shape are overridden.
		c, err := NewNPYConsolidator(
			buildSequenceResource(NPYSequenceMimetype, Parameters{Template: "%05d.npy", ChunkShape: []int{4}}),
			DataKey{Shape: []int{10}},
		)
		assert.Nil(t, err)

		// ACT
		_, err = c.Ingest(ArrivalNotification{Indices: Range{0, 2}, SeqNums: Range{1, 3}})
		assert.Nil(t, err)

		// ASSERT: one file per row, plain unpadded numbering.
		assert.Equal(t, []int{2, 10}, c.Shape())
		assets := c.Assets()
		if assert.Equal(t, 2, len(assets)) {
			assert.Equal(t, "file:///data/run1/frames/0.npy", assets[0].URI)
			assert.Equal(t, "file:///data/run1/frames/1.npy", assets[1].URI)
		}
		assert.Equal(t, "{:d}.npy", c.AdapterParameters()["template"])
	})
	t.Run("ResourceJoinMethodStillWins", func(t *testing.T) {
		concat := JoinConcat
		c, err := NewNPYConsolidator(
			buildSequenceResource(NPYSequenceMimetype, Parameters{JoinMethod: &concat}),
			DataKey{Shape: []int{10}},
		)
		assert.Nil(t, err)
		_, err = c.Ingest(ArrivalNotification{Indices: Range{0, 2}, SeqNums: Range{1, 3}})
		assert.Nil(t, err)
		assert.Equal(t, []int{20}, c.Shape())
	})
}
