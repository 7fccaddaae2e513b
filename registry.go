package goconsolidate

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator"
)

// ConsolidatorConstructor builds a consolidator for one resource and its
// per-row schema.
type ConsolidatorConstructor func(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error)

// NewRegistry returns a registry populated with the built-in consolidator
// variants and the generic base consolidator as the fallback for unknown
// mimetypes.
func NewRegistry() *Registry {
	r := &Registry{
		constructors: make(map[string]ConsolidatorConstructor),
		fallback: func(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
			return NewBaseConsolidator(resource, key, opts...)
		},
	}
	r.Register(CSVMimetype, func(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
		return NewCSVConsolidator(resource, key, opts...)
	})
	r.Register(HDF5Mimetype, func(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
		return NewHDF5Consolidator(resource, key, opts...)
	})
	r.Register(TIFFSequenceMimetype, func(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
		return NewTIFFConsolidator(resource, key, opts...)
	})
	r.Register(JPEGSequenceMimetype, func(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
		return NewJPEGConsolidator(resource, key, opts...)
	})
	r.Register(NPYSequenceMimetype, func(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
		return NewNPYConsolidator(resource, key, opts...)
	})
	return r
}

// Registry is a mimetype-keyed dispatch table of consolidator constructors.
// Unknown mimetypes fall back to the generic base consolidator on purpose:
// they only fail later, inside construction, if the declared per-row shape
// cannot be consolidated.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]ConsolidatorConstructor
	fallback     ConsolidatorConstructor
}

// Register binds a constructor to a mimetype, replacing a previous binding.
func (r *Registry) Register(mimetype string, constructor ConsolidatorConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[mimetype] = constructor
}

// SetFallback replaces the constructor used for unknown mimetypes.
func (r *Registry) SetFallback(constructor ConsolidatorConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = constructor
}

// New looks the resource mimetype up and constructs the matching
// consolidator variant, or the fallback for unknown mimetypes.
func (r *Registry) New(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
	r.mu.RLock()
	constructor, ok := r.constructors[resource.Mimetype]
	if !ok {
		constructor = r.fallback
	}
	r.mu.RUnlock()
	return constructor(resource, key, opts...)
}

// DefaultRegistry is the registry used by ConsolidatorFactory.
var DefaultRegistry = NewRegistry()

// ConsolidatorFactory validates the resource descriptor and constructs the
// consolidator matching its mimetype. It is the sole registry entry point
// for catalog callers.
func ConsolidatorFactory(resource Resource, key DataKey, opts ...ConsolidatorOpt) (Consolidator, error) {
	if err := validator.New().Struct(resource); err != nil {
		return nil, fmt.Errorf("resource validation error: %v", err)
	}
	return DefaultRegistry.New(resource, key, opts...)
}
