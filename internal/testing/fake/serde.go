package fake

import (
	"encoding/json"

	"go.dedis.ch/itx/serde"
)

// GoodFormat is the format of the engine that always succeeds.
const GoodFormat = serde.Format("FakeGood")

// BadFormat is the format of the engine that always fails.
const BadFormat = serde.Format("FakeBad")

// Message is a fake message.
//
// - implements serde.Message
type Message struct{}

// Serialize implements serde.Message.
func (m Message) Serialize(serde.Context) ([]byte, error) {
	return []byte("fake format"), nil
}

// Format is a fake format engine that returns a configured message.
//
// - implements serde.FormatEngine
type Format struct {
	Msg  serde.Message
	err  error
	Call *Call
}

// NewBadFormat returns a format engine that always fails.
func NewBadFormat() Format {
	return Format{err: GetError()}
}

// Encode implements serde.FormatEngine.
func (f Format) Encode(ctx serde.Context, m serde.Message) ([]byte, error) {
	f.Call.Add(ctx, m)
	return []byte("fake format"), f.err
}

// Decode implements serde.FormatEngine.
func (f Format) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	f.Call.Add(ctx, data)
	return f.Msg, f.err
}

// ContextEngine is a fake context engine using the JSON marshaler.
//
// - implements serde.ContextEngine
type ContextEngine struct {
	format serde.Format
	err    error
}

// NewContext returns a context associated to the good format.
func NewContext() serde.Context {
	return serde.NewContext(ContextEngine{format: GoodFormat})
}

// NewBadContext returns a context that always fails to marshal and unmarshal,
// associated to the bad format.
func NewBadContext() serde.Context {
	return serde.NewContext(ContextEngine{
		format: BadFormat,
		err:    GetError(),
	})
}

// NewContextWithFormat returns a context associated to the given format.
func NewContextWithFormat(f serde.Format) serde.Context {
	return serde.NewContext(ContextEngine{format: f})
}

// GetFormat implements serde.ContextEngine.
func (ctx ContextEngine) GetFormat() serde.Format {
	return ctx.format
}

// Marshal implements serde.ContextEngine.
func (ctx ContextEngine) Marshal(m interface{}) ([]byte, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}

	return json.Marshal(m)
}

// Unmarshal implements serde.ContextEngine.
func (ctx ContextEngine) Unmarshal(data []byte, m interface{}) error {
	if ctx.err != nil {
		return ctx.err
	}

	return json.Unmarshal(data, m)
}
