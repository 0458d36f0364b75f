// Package pipeline ties the stages together: the builder composition, the
// resolver chain and the transport.
//
// The default configuration is an explicit immutable value given at creation
// and overridable per call. There is no other process-wide state: each run
// owns exactly one interaction.
package pipeline

import (
	"context"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/itx"
	"go.dedis.ch/itx/build"
	"go.dedis.ch/itx/crypto"
	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/node"
	"go.dedis.ch/itx/node/web"
	"go.dedis.ch/itx/resolve"
	"go.dedis.ch/itx/serde"
	"go.dedis.ch/itx/serde/json"
	"golang.org/x/xerrors"
)

// Config is the default configuration of a pipeline. It is read-only after
// initialization.
type Config struct {
	// Endpoint is the default node endpoint.
	Endpoint string `yaml:"endpoint"`
}

// Result is the outcome of a successful run.
type Result struct {
	// Interaction is the sent interaction.
	Interaction *interaction.Interaction

	// TxID is the digest identifying the transaction.
	TxID []byte

	// Response is the raw response of the node. Decoding it belongs to the
	// caller.
	Response []byte
}

type template struct {
	client  node.Client
	sctx    serde.Context
	hashFac crypto.HashFactory
}

// Option is the type of options to create a pipeline.
type Option func(*template)

// WithClient is an option to replace the default node client.
func WithClient(client node.Client) Option {
	return func(tmpl *template) {
		tmpl.client = client
	}
}

// WithContext is an option to set the serialization context.
func WithContext(sctx serde.Context) Option {
	return func(tmpl *template) {
		tmpl.sctx = sctx
	}
}

// WithHashFactory is an option to set the hash factory used for the signature
// messages and the transaction id.
func WithHashFactory(f crypto.HashFactory) Option {
	return func(tmpl *template) {
		tmpl.hashFac = f
	}
}

// Pipeline runs interactions from the builders to the transport.
type Pipeline struct {
	cfg     Config
	client  node.Client
	sctx    serde.Context
	hashFac crypto.HashFactory
	logger  zerolog.Logger
}

// New returns a pipeline for the configuration. By default it talks JSON over
// HTTP to the configured endpoint.
func New(cfg Config, opts ...Option) Pipeline {
	tmpl := template{
		sctx:    json.NewContext(),
		hashFac: crypto.NewSha256Factory(),
	}

	for _, opt := range opts {
		opt(&tmpl)
	}

	if tmpl.client == nil {
		tmpl.client = web.NewClient(cfg.Endpoint)
	}

	return Pipeline{
		cfg:     cfg,
		client:  tmpl.client,
		sctx:    tmpl.sctx,
		hashFac: tmpl.hashFac,
		logger:  itx.Logger,
	}
}

// CallOption is the type of per-call overrides.
type CallOption func(*template)

// WithEndpoint is a call option to send to another node endpoint.
func WithEndpoint(endpoint string) CallOption {
	return func(tmpl *template) {
		tmpl.client = web.NewClient(endpoint)
	}
}

// WithNode is a call option to send through another node client.
func WithNode(client node.Client) CallOption {
	return func(tmpl *template) {
		tmpl.client = client
	}
}

// Run composes the builders, resolves the interaction through the canonical
// chain and sends it. It returns the raw response of the node alongside the
// transaction id.
func (p Pipeline) Run(ctx context.Context, builders []build.Builder,
	opts ...CallOption) (*Result, error) {

	client := p.override(opts)

	logger := p.logger.With().Str("run", xid.New().String()).Logger()

	ix, err := build.Compose(builders...)
	if err != nil {
		return nil, err
	}

	logger.Trace().Msg("interaction built")

	chain := resolve.NewDefaultChain(client, p.sctx, p.hashFac)

	err = chain.Resolve(ctx, ix)
	if err != nil {
		return nil, err
	}

	logger.Trace().Msg("interaction resolved")

	return p.send(ctx, client, ix)
}

// Send serializes a valid interaction and hands it to the transport. The
// interaction is marked as sent afterwards and cannot be reused.
func (p Pipeline) Send(ctx context.Context, ix *interaction.Interaction,
	opts ...CallOption) (*Result, error) {

	return p.send(ctx, p.override(opts), ix)
}

func (p Pipeline) send(ctx context.Context, client node.Client,
	ix *interaction.Interaction) (*Result, error) {

	if ix.GetStatus() != interaction.StatusValid {
		return nil, xerrors.Errorf("cannot send interaction in status %v: %s",
			ix.GetStatus(), ix.GetReason())
	}

	envelope, err := ix.Serialize(p.sctx)
	if err != nil {
		return nil, xerrors.Errorf("couldn't serialize interaction: %v", err)
	}

	id, err := ix.ID(p.hashFac)
	if err != nil {
		return nil, xerrors.Errorf("couldn't compute transaction id: %v", err)
	}

	resp, err := client.SendTransaction(ctx, envelope)
	if err != nil {
		nerr, ok := err.(node.Error)
		if !ok {
			nerr = node.NewError("send transaction", err)
		}

		// The interaction is still valid so the caller can decide on a
		// recovery policy, like sending through another client.
		return nil, nerr.WithInteraction(ix)
	}

	err = ix.MarkSent()
	if err != nil {
		return nil, err
	}

	return &Result{
		Interaction: ix,
		TxID:        id,
		Response:    resp,
	}, nil
}

func (p Pipeline) override(opts []CallOption) node.Client {
	tmpl := template{client: p.client}

	for _, opt := range opts {
		opt(&tmpl)
	}

	return tmpl.client
}
