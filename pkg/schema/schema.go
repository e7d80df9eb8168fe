// Package schema holds the descriptor model and the registry used for
// structural validation. Descriptors are a small closed set of field
// variants interpreted by one recursive walker — no reflection, no
// import-time side effects. Schemas are registered explicitly once at
// process start and never mutated afterwards.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hassops/ha-guard/pkg/logger"
)

var registryLog = logger.New("schema:registry")

// Programmer errors. These signal a caller or configuration bug, never a
// bad document, and are returned as plain Go errors rather than being
// folded into a validation result.
var (
	ErrDuplicateSchema = errors.New("schema already registered")
	ErrUnknownSchema   = errors.New("unknown schema")
)

// Type is the declared value kind of a field.
type Type int

const (
	TypeAny Type = iota
	TypeString
	TypeBool
	TypeNumber
	TypeMapping
	TypeSequence
)

// String returns the type name used in mismatch messages.
func (t Type) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeMapping:
		return "mapping"
	case TypeSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Elem describes the element of a nested sequence or mapping field.
// Exactly one of Descriptor (nested structure) or Scalar (leaf type) is
// used; Descriptor wins when both are set.
type Elem struct {
	Descriptor *Descriptor
	Scalar     Type
}

// FieldSpec describes one field of a descriptor. Enum implies a string
// field restricted to the listed values. Elem only applies to
// TypeSequence/TypeMapping fields; nil means elements of any kind.
type FieldSpec struct {
	Name     string
	Required bool
	Type     Type
	Enum     []string
	Elem     *Elem
}

// Descriptor is an ordered set of field specs. Fields not listed here are
// deliberately never flagged: Home Assistant grows new keys faster than
// any schema tracks them, so unknown fields must stay forward-compatible.
type Descriptor struct {
	Name   string
	Fields []FieldSpec
}

// Registry holds named descriptors. Safe for concurrent use; in practice
// it is populated once at startup and only read afterwards.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Descriptor)}
}

// Register adds a descriptor under name. Registering the same name twice
// is a programmer error and fails with ErrDuplicateSchema.
func (r *Registry) Register(name string, d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("register %q: nil descriptor", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateSchema)
	}
	registryLog.Printf("Registered schema %q with %d fields", name, len(d.Fields))
	r.schemas[name] = d
	return nil
}

// Get returns the descriptor for name, or ErrUnknownSchema. Callers must
// not turn this error into a validation result: an unknown schema name is
// a bug in the caller, not a problem with the document.
func (r *Registry) Get(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", name, ErrUnknownSchema)
	}
	return d, nil
}

// Names returns the registered schema names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
