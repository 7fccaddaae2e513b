package goconsolidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NewIssue returns a new *Issue populated with the passed parameters. The
// resource field is left empty and gets populated by the consolidation
// pipeline itself when the issue travels through it.
func NewIssue(issueType IssueType, step Step, note string, err error) *Issue {
	return &Issue{
		Type:    issueType,
		Step:    step,
		Note:    note,
		Created: time.Now(),
		Err:     err,
	}
}

// Issue represents an error or problem that's happened during consolidation.
// It carries the failed step and a type that allows callers to react to
// specific failure classes.
type Issue struct {
	Resource string    `json:"resource,omitempty"`
	Step     Step      `json:"step"`
	Type     IssueType `json:"type"`
	Note     string    `json:"note,omitempty"`
	Created  time.Time `json:"created"`
	Err      error     `json:"err"`
}

// Error makes the Issue type implement the error interface.
func (i *Issue) Error() string {
	if d, err := json.Marshal(i); err == nil {
		return string(d)
	}
	return fmt.Sprintf("%+v", *i)
}

// Unwrap exposes the wrapped cause, if any.
func (i *Issue) Unwrap() error {
	return i.Err
}

// MarshalJSON overrides the default MarshalJSON method in order to represent
// the wrapped error as its message instead of an opaque object.
func (i *Issue) MarshalJSON() ([]byte, error) {
	var errMsg string
	if i.Err != nil {
		errMsg = i.Err.Error()
	}
	type Alias Issue
	return json.Marshal(&struct {
		*Alias
		Err string `json:"err,omitempty"`
	}{
		Alias: (*Alias)(i),
		Err:   errMsg,
	})
}

// IssueType defines the kind of an issue within the consolidation process.
type IssueType string

const (
	// IssueTypeUnsupportedFormat describes resources rejected by the selected
	// consolidator: an unaccepted mimetype or an unresolved per-row dimension.
	IssueTypeUnsupportedFormat IssueType = "unsupported_format"
	// IssueTypeInvalidChunkShape describes chunk shapes with non-positive
	// entries or more chunk dimensions than data dimensions.
	IssueTypeInvalidChunkShape IssueType = "invalid_chunk_shape"
	// IssueTypeInconsistentResource describes resource extensions that
	// disagree with the existing consolidator on dataset path or chunk shape.
	IssueTypeInconsistentResource IssueType = "inconsistent_resource"
	// IssueTypeShapeMismatch describes a validation shape disagreement.
	IssueTypeShapeMismatch IssueType = "shape_mismatch"
	// IssueTypeChunkMismatch describes a validation chunking disagreement.
	IssueTypeChunkMismatch IssueType = "chunk_mismatch"
	// IssueTypeDtypeMismatch describes a validation data type disagreement.
	IssueTypeDtypeMismatch IssueType = "dtype_mismatch"
	// IssueTypeDimCountMismatch describes a declared dimension name count
	// that disagrees with the actual array rank.
	IssueTypeDimCountMismatch IssueType = "dim_count_mismatch"
	// IssueTypeInternal describes non-recoverable internal consistency
	// failures, e.g. an unreadable snapshot after applied corrections.
	IssueTypeInternal IssueType = "internal"
)

// String converts an IssueType to string.
func (i IssueType) String() string {
	return string(i)
}

// IsIssueType reports whether err is an *Issue of the given type.
func IsIssueType(err error, issueType IssueType) bool {
	var issue *Issue
	if errors.As(err, &issue) {
		return issue.Type == issueType
	}
	return false
}
