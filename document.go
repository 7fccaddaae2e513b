package goconsolidate

// Document kinds the batcher knows about. Everything else passes through
// the batcher untouched.
const (
	// KindEvent is a single row of a measurement stream, grouped by the
	// originating schema uid.
	KindEvent = "event"
	// KindEventPage is a bulk page of events sharing one schema.
	KindEventPage = "event_page"
	// KindDatum is a single externally-stored datum reference, grouped by
	// the originating resource uid.
	KindDatum = "datum"
	// KindDatumPage is a bulk page of datum references sharing one resource.
	KindDatumPage = "datum_page"
)

// Document is one record of the flat, time-ordered stream the batcher
// repacks: a kind tag plus the record body.
type Document struct {
	Kind string                 `json:"kind"`
	Body map[string]interface{} `json:"body"`
}
