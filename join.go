package goconsolidate

import "errors"

// JoinMethod defines how consecutive rows are joined into the logical array.
type JoinMethod string

const (
	// JoinConcat flattens rows along an existing leading dimension.
	JoinConcat JoinMethod = "concat"
	// JoinStack treats each row as a new index along a fresh leading dimension.
	JoinStack JoinMethod = "stack"
)

// String converts a join method to string.
func (j JoinMethod) String() string {
	return string(j)
}

// Valid checks whether the assigned join method value is valid.
func (j JoinMethod) Valid() error {
	switch j {
	case JoinConcat, JoinStack:
		return nil
	}
	return errors.New("invalid join method")
}
