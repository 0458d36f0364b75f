package serde

// ContextEngine is the interface to implement to create a context.
type ContextEngine interface {
	// GetFormat returns the name of the format for this context.
	GetFormat() Format

	// Marshal returns the bytes of the message according to the format of the
	// context.
	Marshal(message interface{}) ([]byte, error)

	// Unmarshal populates the message with the data according to the format
	// of the context.
	Unmarshal(data []byte, message interface{}) error
}

// Context is the context passed to the serialization/deserialization
// requests.
type Context struct {
	ContextEngine
}

// NewContext returns a new context for the engine.
func NewContext(engine ContextEngine) Context {
	return Context{
		ContextEngine: engine,
	}
}
