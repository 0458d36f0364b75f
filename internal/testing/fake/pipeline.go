package fake

import (
	"context"

	"go.dedis.ch/itx/access"
	"go.dedis.ch/itx/node"
)

// Capability is a fake signing capability. It records the requests and can be
// configured to fail or to answer with a mismatching key.
//
// - implements access.Capability
type Capability struct {
	Call *Call

	err      error
	address  string
	override bool
	empty    bool
}

// NewCapability returns a capability that signs every request.
func NewCapability() *Capability {
	return &Capability{Call: NewCall()}
}

// NewBadCapability returns a capability that always fails.
func NewBadCapability() *Capability {
	return &Capability{Call: NewCall(), err: GetError()}
}

// NewMismatchCapability returns a capability answering with the given address
// instead of the requested one.
func NewMismatchCapability(address string) *Capability {
	return &Capability{Call: NewCall(), address: address, override: true}
}

// NewEmptyCapability returns a capability answering with an empty signature.
func NewEmptyCapability() *Capability {
	return &Capability{Call: NewCall(), empty: true}
}

// Sign implements access.Capability. It records the request and returns a
// signature derived from the message.
func (c *Capability) Sign(_ context.Context, req access.SignRequest) (access.SignResponse, error) {
	c.Call.Add(req)

	if c.err != nil {
		return access.SignResponse{}, c.err
	}

	resp := access.SignResponse{
		Address:   req.Address,
		KeyID:     req.KeyID,
		Signature: append([]byte("sig:"), req.Message...),
	}

	if c.override {
		resp.Address = c.address
	}

	if c.empty {
		resp.Signature = nil
	}

	return resp, nil
}

// Client is a fake node client answering with configured values.
//
// - implements node.Client
type Client struct {
	Call *Call

	Block    string
	Nonce    uint64
	Response []byte

	errBlock error
	errNonce error
	errSend  error
}

// NewClient returns a client answering every request.
func NewClient() *Client {
	return &Client{
		Call:     NewCall(),
		Block:    "deadbeef",
		Nonce:    42,
		Response: []byte(`{"status":"ok"}`),
	}
}

// NewBadBlockClient returns a client failing to fetch the latest block.
func NewBadBlockClient() *Client {
	client := NewClient()
	client.errBlock = node.NewError("fetch latest block", GetError())

	return client
}

// NewBadNonceClient returns a client failing to fetch sequence numbers.
func NewBadNonceClient() *Client {
	client := NewClient()
	client.errNonce = node.NewError("fetch sequence number", GetError())

	return client
}

// NewBadSendClient returns a client failing to send transactions.
func NewBadSendClient() *Client {
	client := NewClient()
	client.errSend = node.NewError("send transaction", GetError())

	return client
}

// GetLatestBlock implements node.Client.
func (c *Client) GetLatestBlock(context.Context) (string, error) {
	c.Call.Add("block")

	return c.Block, c.errBlock
}

// GetSequenceNumber implements node.Client.
func (c *Client) GetSequenceNumber(_ context.Context, address string, keyID uint64) (uint64, error) {
	c.Call.Add("nonce", address, keyID)

	return c.Nonce, c.errNonce
}

// SendTransaction implements node.Client.
func (c *Client) SendTransaction(_ context.Context, envelope []byte) ([]byte, error) {
	c.Call.Add("send", envelope)

	return c.Response, c.errSend
}
