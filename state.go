package goconsolidate

import "fmt"

// ConsolidatorState is the serialized form of a consolidator, produced once
// the owning run is closed and restored when arrivals for the resource may
// still come in after a restart.
type ConsolidatorState struct {
	ResourceUID string      `json:"resource_uid"`
	Mimetype    string      `json:"mimetype"`
	DataKey     string      `json:"data_key"`
	NumRows     int         `json:"num_rows"`
	SeqIndex    map[int]int `json:"seq_index"`
	DatumShape  []int       `json:"datum_shape"`
	ChunkShape  []int       `json:"chunk_shape,omitempty"`
	JoinMethod  JoinMethod  `json:"join_method"`
	JoinChunks  bool        `json:"join_chunks"`
	DataType    DataType    `json:"data_type"`
	Dims        []string    `json:"dims,omitempty"`
	Assets      []Asset     `json:"assets"`
}

// State returns the serializable form of the consolidator.
func (c *BaseConsolidator) State() ConsolidatorState {
	seqIndex := make(map[int]int, len(c.seqIndex))
	for seq, idx := range c.seqIndex {
		seqIndex[seq] = idx
	}
	return ConsolidatorState{
		ResourceUID: c.resource.UID,
		Mimetype:    c.resource.Mimetype,
		DataKey:     c.resource.DataKey,
		NumRows:     c.numRows,
		SeqIndex:    seqIndex,
		DatumShape:  copyInts(c.datumShape),
		ChunkShape:  copyInts(c.chunkShape),
		JoinMethod:  c.joinMethod,
		JoinChunks:  c.joinChunks,
		DataType:    c.dataType,
		Dims:        append([]string(nil), c.dims...),
		Assets:      append([]Asset(nil), c.assets...),
	}
}

// LoadState restores a previously serialized consolidator state. The state
// must belong to the same resource and mimetype the consolidator was created
// for.
func (c *BaseConsolidator) LoadState(state ConsolidatorState) error {
	if state.ResourceUID != c.resource.UID || state.Mimetype != c.resource.Mimetype {
		return NewIssue(IssueTypeInconsistentResource, StepOther,
			fmt.Sprintf("state of resource %s (%s) cannot be loaded into the consolidator of resource %s (%s)",
				state.ResourceUID, state.Mimetype, c.resource.UID, c.resource.Mimetype), nil)
	}
	c.numRows = state.NumRows
	c.seqIndex = make(map[int]int, len(state.SeqIndex))
	for seq, idx := range state.SeqIndex {
		c.seqIndex[seq] = idx
	}
	c.datumShape = copyInts(state.DatumShape)
	c.chunkShape = copyInts(state.ChunkShape)
	c.joinMethod = state.JoinMethod
	c.joinChunks = state.JoinChunks
	c.dataType = state.DataType
	c.dims = append([]string(nil), state.Dims...)
	c.assets = append([]Asset(nil), state.Assets...)
	return nil
}
