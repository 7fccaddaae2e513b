package goconsolidate

// Range represents a half-open [Start, Stop) interval of row numbers.
type Range struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// Len returns the number of rows covered by the range.
func (r Range) Len() int {
	return r.Stop - r.Start
}

// ArrivalNotification describes a contiguous block of newly written rows.
// SeqNums are the logical row numbers as produced by the instrument, possibly
// non-contiguous across notifications due to skipped points. Indices are the
// corresponding physical storage rows and are always contiguous.
type ArrivalNotification struct {
	Indices Range `json:"indices"`
	SeqNums Range `json:"seq_nums"`
}

// Resource identifies a family of upcoming arrivals sharing one physical
// storage target. It is immutable once created; a resource may later be
// extended by an additional physical asset covering the same logical target,
// but its identity (mimetype, dataset path, chunk shape) must not change
// across extensions.
type Resource struct {
	// UID identifies the resource within its run.
	UID string `json:"uid" validate:"required"`
	// Mimetype selects the consolidator variant handling the resource.
	Mimetype string `json:"mimetype" validate:"required"`
	// DataKey is the name of the measured quantity backed by the resource.
	DataKey string `json:"data_key" validate:"required"`
	// URI is the base location of the resource data.
	URI string `json:"uri" validate:"required"`
	// Parameters carries the format specific configuration of the resource.
	Parameters Parameters `json:"parameters"`
}

// Parameters is the format specific configuration bag of a resource. All
// fields are optional; each consolidator variant reads the subset it
// understands. Extra carries unknown upstream fields verbatim for forward
// compatibility.
type Parameters struct {
	// ChunkShape declares the per-dimension chunk sizes.
	ChunkShape []int `json:"chunk_shape,omitempty"`
	// JoinMethod overrides how rows are joined into the logical array.
	JoinMethod *JoinMethod `json:"join_method,omitempty"`
	// JoinChunks overrides whether chunk boundaries may merge across rows.
	JoinChunks *bool `json:"join_chunks,omitempty"`
	// Multiplier is the rows-per-datum count when it is distinct from the
	// declared per-row shape.
	Multiplier *int `json:"multiplier,omitempty"`
	// Dataset is the path of the dataset inside a container file.
	Dataset []string `json:"dataset,omitempty"`
	// SWMR toggles single-writer/multi-reader mode for container readers.
	SWMR *bool `json:"swmr,omitempty"`
	// Locking is forwarded to container readers that support file locking.
	Locking interface{} `json:"locking,omitempty"`
	// Slice is forwarded to readers that support sub-selection.
	Slice interface{} `json:"slice,omitempty"`
	// Squeeze is forwarded to readers that drop length-one dimensions.
	Squeeze *bool `json:"squeeze,omitempty"`
	// Template is the printf-style filename template of multi-file resources.
	Template string `json:"template,omitempty"`
	// Filename is the base filename of multi-file resources.
	Filename string `json:"filename,omitempty"`
	// Delimiter is the field separator of tabular text resources.
	Delimiter string `json:"delimiter,omitempty"`
	// Header states whether tabular text resources carry a header row.
	Header *bool `json:"header,omitempty"`
	// Names lists the column names of tabular text resources.
	Names []string `json:"names,omitempty"`
	// SkipRows is the number of leading rows tabular readers must skip.
	SkipRows *int `json:"skip_rows,omitempty"`
	// NRows limits the number of rows tabular readers consume.
	NRows *int `json:"n_rows,omitempty"`
	// DType overrides the element type announced to tabular readers.
	DType string `json:"dtype,omitempty"`
	// Encoding is the text encoding of tabular text resources.
	Encoding string `json:"encoding,omitempty"`
	// Extra holds unknown upstream parameters verbatim.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// DataKey is the declared per-row schema of one measured quantity, used only
// at consolidator construction. A negative Shape entry marks an unresolved
// (variable-sized) dimension.
type DataKey struct {
	// Name is the measured quantity name.
	Name string `json:"name"`
	// Shape is the declared per-row shape.
	Shape []int `json:"shape"`
	// DType is the scalar element type, e.g. "float64".
	DType string `json:"dtype,omitempty"`
	// DTypeDescr describes a structured (multi-field) element type. When
	// non-empty it takes precedence over DType.
	DTypeDescr []DTypeField `json:"dtype_descr,omitempty"`
	// Dims optionally names the logical array dimensions.
	Dims []string `json:"dims,omitempty"`
}
