package goconsolidate

import "fmt"

// defaultScalarDType is assumed when a data key declares no type descriptor.
const defaultScalarDType = "float64"

// DTypeField is one element of a structured type descriptor: a named,
// possibly multi-dimensional sub-field.
type DTypeField struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
	Shape []int  `json:"shape,omitempty"`
}

// DataType describes the element type of a logical array. It is either a
// scalar type (Scalar set, Fields empty) or a composite type built from a
// structured descriptor.
type DataType struct {
	Scalar string       `json:"scalar,omitempty"`
	Fields []DTypeField `json:"fields,omitempty"`
}

// IsComposite reports whether the data type is a structured multi-field type.
func (d DataType) IsComposite() bool {
	return len(d.Fields) > 0
}

// Equal reports whether two data types describe the same element type.
func (d DataType) Equal(other DataType) bool {
	if d.Scalar != other.Scalar || len(d.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range d.Fields {
		o := other.Fields[i]
		if f.Name != o.Name || f.DType != o.DType || !equalInts(f.Shape, o.Shape) {
			return false
		}
	}
	return true
}

// String renders the data type in a compact human-readable form.
func (d DataType) String() string {
	if !d.IsComposite() {
		return d.Scalar
	}
	s := "["
	for i, f := range d.Fields {
		if i > 0 {
			s += ", "
		}
		if len(f.Shape) > 0 {
			s += fmt.Sprintf("(%s, %s, %v)", f.Name, f.DType, f.Shape)
		} else {
			s += fmt.Sprintf("(%s, %s)", f.Name, f.DType)
		}
	}
	return s + "]"
}

// buildDataType derives the consolidator data type from the declared data key
// descriptor. A structured descriptor is converted element-wise into a
// composite type; a plain scalar descriptor is taken verbatim; a missing
// descriptor defaults to 64-bit float.
func buildDataType(key DataKey) (DataType, error) {
	if len(key.DTypeDescr) > 0 {
		fields := make([]DTypeField, 0, len(key.DTypeDescr))
		for _, f := range key.DTypeDescr {
			if f.Name == "" || f.DType == "" {
				return DataType{}, fmt.Errorf("structured dtype element %+v must declare name and dtype", f)
			}
			fields = append(fields, DTypeField{Name: f.Name, DType: f.DType, Shape: copyInts(f.Shape)})
		}
		return DataType{Fields: fields}, nil
	}
	if key.DType != "" {
		return DataType{Scalar: key.DType}, nil
	}
	return DataType{Scalar: defaultScalarDType}, nil
}
