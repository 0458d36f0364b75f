// Package serde defines the primitives to serialize and deserialize (serde)
// the messages of the module.
//
// A message implementation registers a format engine for each format it
// supports, and the context passed to the requests decides which engine is
// used. This allows a data model to support several formats while keeping the
// encoding logic out of the model itself.
package serde

import "io"

// Message is the interface a data model should implement to be serialized.
type Message interface {
	// Serialize returns the serialized data of the message according to the
	// format of the context.
	Serialize(ctx Context) ([]byte, error)
}

// Factory is the interface to implement to instantiate a data model from its
// serialized form.
type Factory interface {
	// Deserialize returns the message associated with the data using the
	// format of the context.
	Deserialize(ctx Context, data []byte) (Message, error)
}

// Fingerprinter is the interface to implement to write a deterministic binary
// representation of a data model, for instance to compute a digest or the
// bytes covered by a signature.
type Fingerprinter interface {
	// Fingerprint writes itself to the writer in a deterministic way.
	Fingerprint(writer io.Writer) error
}

// Format is the identifier of a format engine.
type Format string

const (
	// FormatJSON is the identifier of the JSON format.
	FormatJSON Format = "JSON"
)

// FormatEngine is the interface to implement to encode and decode messages of
// a given type in a given format.
type FormatEngine interface {
	// Encode returns the serialized data of the message according to the
	// format of the engine.
	Encode(ctx Context, message Message) ([]byte, error)

	// Decode returns the message associated with the data according to the
	// format of the engine.
	Decode(ctx Context, data []byte) (Message, error)
}
