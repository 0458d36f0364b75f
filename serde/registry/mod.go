// Package registry defines the format registry mechanism.
//
// It provides a default implementation that always returns an engine, using
// an empty one when the format is unknown so that serialization requests fail
// with a meaningful error.
package registry

import (
	"go.dedis.ch/itx/serde"
	"golang.org/x/xerrors"
)

// Registry is an interface to register and look up the format engines of a
// message type.
type Registry interface {
	// Register stores the engine for the given format.
	Register(serde.Format, serde.FormatEngine)

	// Get returns the engine associated with the format.
	Get(serde.Format) serde.FormatEngine
}

// SimpleRegistry is a default implementation of the Registry interface.
//
// - implements registry.Registry
type SimpleRegistry struct {
	store map[serde.Format]serde.FormatEngine
}

// NewSimpleRegistry returns a new empty registry.
func NewSimpleRegistry() *SimpleRegistry {
	return &SimpleRegistry{
		store: make(map[serde.Format]serde.FormatEngine),
	}
}

// Register implements registry.Registry. It registers the engine for the
// given format.
func (r *SimpleRegistry) Register(name serde.Format, f serde.FormatEngine) {
	r.store[name] = f
}

// Get implements registry.Registry. It returns the engine associated with the
// format if it exists, otherwise an empty engine that always returns an
// error.
func (r *SimpleRegistry) Get(name serde.Format) serde.FormatEngine {
	f := r.store[name]
	if f == nil {
		return emptyFormat{name: name}
	}

	return f
}

// EmptyFormat is returned for unknown formats so that the caller gets a
// meaningful error without checking the format existence.
//
// - implements serde.FormatEngine
type emptyFormat struct {
	serde.FormatEngine
	name serde.Format
}

// Encode implements serde.FormatEngine. It always returns an error.
func (f emptyFormat) Encode(serde.Context, serde.Message) ([]byte, error) {
	return nil, xerrors.Errorf("format '%s' is not implemented", f.name)
}

// Decode implements serde.FormatEngine. It always returns an error.
func (f emptyFormat) Decode(serde.Context, []byte) (serde.Message, error) {
	return nil, xerrors.Errorf("format '%s' is not implemented", f.name)
}
