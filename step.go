package goconsolidate

// Step defines a step within the consolidation process.
type Step string

const (
	// StepConstruct describes consolidator construction from a resource.
	StepConstruct Step = "construct"
	// StepIngest describes the processing of an arrival notification.
	StepIngest Step = "ingest"
	// StepSnapshot describes the assembly of a data source snapshot.
	StepSnapshot Step = "snapshot"
	// StepValidate describes the comparison against an independent reader.
	StepValidate Step = "validate"
	// StepExtend describes the extension of a consolidator by a new resource.
	StepExtend Step = "extend"
	// StepBatch describes the document batching transform.
	StepBatch Step = "batch"
	// StepOther describes a step different from all mentioned above.
	StepOther = "other"
)

// String converts a step to string.
func (s Step) String() string {
	return string(s)
}
