package goconsolidate

import (
	"go.uber.org/zap"
)

// defaultBatchLimit is the default maximum number of rows per emitted page.
const defaultBatchLimit = 1000

// RowKind describes one packable document kind: the kind of the page it
// packs into and the body field whose value groups packable runs.
type RowKind struct {
	Kind     string
	PageKind string
	KeyField string
}

// DefaultRowKinds returns the two row-oriented record kinds that can be
// losslessly packed into pages.
func DefaultRowKinds() []RowKind {
	return []RowKind{
		{Kind: KindEvent, PageKind: KindEventPage, KeyField: "descriptor"},
		{Kind: KindDatum, PageKind: KindDatumPage, KeyField: "resource"},
	}
}

// BatcherOpt is a type that modifies the default Batcher behaviour.
type BatcherOpt func(b *Batcher)

// BatcherWithLimit sets the maximum number of rows collected into one page.
var BatcherWithLimit = func(limit int) func(b *Batcher) {
	return func(b *Batcher) {
		b.limit = limit
	}
}

// BatcherWithRowKinds replaces the set of packable document kinds.
var BatcherWithRowKinds = func(kinds []RowKind) func(b *Batcher) {
	return func(b *Batcher) {
		b.kinds = make(map[string]RowKind, len(kinds))
		for _, k := range kinds {
			b.kinds[k.Kind] = k
		}
	}
}

// BatcherWithLogger enhances the batcher with the passed logger.
var BatcherWithLogger = func(logger *zap.Logger) func(b *Batcher) {
	return func(b *Batcher) {
		b.logger = logger
	}
}

// NewBatcher returns a new instance of Batcher with the default row kinds
// and page size limit, modified by the passed options.
func NewBatcher(opts ...BatcherOpt) *Batcher {
	b := &Batcher{
		limit:  defaultBatchLimit,
		logger: buildDefaultLogger("batcher"),
	}
	BatcherWithRowKinds(DefaultRowKinds())(b)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Batcher is a streaming repacker over a flat, time-ordered document stream.
// Runs of row-kind documents sharing one grouping key are collapsed into
// bulk pages of up to the configured limit; every other document passes
// through exactly once at its original position. The batcher holds no shared
// state across separate stream instances and never looks ahead beyond the
// current document.
type Batcher struct {
	limit  int
	kinds  map[string]RowKind
	buffer []map[string]interface{}
	kind   string
	key    string
	logger *zap.Logger
}

// Feed processes one incoming document in stream order and returns the
// documents ready to be emitted, possibly none. Callers must call Flush once
// the stream ends to release the remaining buffered page.
func (b *Batcher) Feed(doc Document) []Document {
	kind, packable := b.kinds[doc.Kind]
	if !packable {
		return append(b.Flush(), doc)
	}
	key, _ := doc.Body[kind.KeyField].(string)
	var out []Document
	if len(b.buffer) > 0 && (doc.Kind != b.kind || key != b.key || len(b.buffer) >= b.limit) {
		out = b.Flush()
	}
	if len(b.buffer) == 0 {
		b.kind = doc.Kind
		b.key = key
	}
	b.buffer = append(b.buffer, doc.Body)
	return out
}

// Flush emits the currently buffered run as one page, if any, and resets
// the buffer.
func (b *Batcher) Flush() []Document {
	if len(b.buffer) == 0 {
		return nil
	}
	page := b.pack()
	b.logger.Debug("page flushed",
		zap.String("kind", page.Kind),
		zap.String("key", b.key),
		zap.Int("rows", len(b.buffer)),
	)
	b.buffer = nil
	b.kind = ""
	b.key = ""
	return []Document{page}
}

// pack collapses the buffered run into one page document. Fields are
// transposed column-wise: scalar fields become lists with one entry per
// buffered record, map-valued fields become maps of such lists, and the
// grouping key field stays a scalar shared by the whole page.
func (b *Batcher) pack() Document {
	kind := b.kinds[b.kind]
	body := make(map[string]interface{}, len(b.buffer[0]))
	for field, value := range b.buffer[0] {
		if field == kind.KeyField {
			body[field] = b.key
			continue
		}
		if sub, ok := value.(map[string]interface{}); ok {
			columns := make(map[string]interface{}, len(sub))
			for name := range sub {
				column := make([]interface{}, len(b.buffer))
				for i, record := range b.buffer {
					if recordSub, ok := record[field].(map[string]interface{}); ok {
						column[i] = recordSub[name]
					}
				}
				columns[name] = column
			}
			body[field] = columns
			continue
		}
		column := make([]interface{}, len(b.buffer))
		for i, record := range b.buffer {
			column[i] = record[field]
		}
		body[field] = column
	}
	return Document{Kind: kind.PageKind, Body: body}
}

// BatchDocuments applies the batcher transform to a whole in-memory stream
// and returns the repacked stream, including the final flush.
func BatchDocuments(docs []Document, opts ...BatcherOpt) []Document {
	b := NewBatcher(opts...)
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, b.Feed(doc)...)
	}
	return append(out, b.Flush()...)
}
