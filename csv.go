package goconsolidate

import "fmt"

// CSVMimetype is the mimetype accepted by the CSVConsolidator.
const CSVMimetype = "text/csv"

// NewCSVConsolidator returns a new instance of the CSVConsolidator. Tabular
// rows always concatenate along the leading dimension with independent
// per-row chunking: appended text rows never merge into the chunks of
// previously written ones.
func NewCSVConsolidator(resource Resource, key DataKey, opts ...ConsolidatorOpt) (*CSVConsolidator, error) {
	if resource.Mimetype != CSVMimetype {
		return nil, NewIssue(IssueTypeUnsupportedFormat, StepConstruct,
			fmt.Sprintf("mimetype %s is not supported by the CSV consolidator", resource.Mimetype), nil)
	}
	base, err := NewBaseConsolidator(resource, key, opts...)
	if err != nil {
		return nil, err
	}
	c := &CSVConsolidator{BaseConsolidator: *base}
	c.joinMethod = JoinConcat
	c.joinChunks = false
	c.adapterParameters = c.AdapterParameters
	return c, nil
}

// CSVConsolidator consolidates tabular text resources.
type CSVConsolidator struct {
	BaseConsolidator
}

// AdapterParameters forwards the whitelisted subset of the resource
// parameters the tabular reader understands. Unless overridden, the data is
// announced as carrying no header row.
func (c *CSVConsolidator) AdapterParameters() map[string]interface{} {
	params := c.resource.Parameters
	p := map[string]interface{}{"header": false}
	if params.Header != nil {
		p["header"] = *params.Header
	}
	if params.Delimiter != "" {
		p["delimiter"] = params.Delimiter
	}
	if len(params.Names) > 0 {
		p["names"] = append([]string(nil), params.Names...)
	}
	if params.SkipRows != nil {
		p["skip_rows"] = *params.SkipRows
	}
	if params.NRows != nil {
		p["n_rows"] = *params.NRows
	}
	if params.DType != "" {
		p["dtype"] = params.DType
	}
	if params.Encoding != "" {
		p["encoding"] = params.Encoding
	}
	return p
}
