// Package web implements the node client over HTTP with JSON messages.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.dedis.ch/itx/node"
	"golang.org/x/xerrors"
)

// Client is a node client talking JSON over HTTP.
//
// - implements node.Client
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient returns a client for the endpoint.
func NewClient(endpoint string) Client {
	return Client{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// BlockJSON is the JSON message of the latest block response.
type BlockJSON struct {
	ID string `json:"id"`
}

// AccountKeyJSON is the JSON message of the account key response.
type AccountKeyJSON struct {
	SequenceNumber uint64 `json:"sequenceNumber"`
}

// GetLatestBlock implements node.Client. It fetches the identifier of the
// latest block.
func (c Client) GetLatestBlock(ctx context.Context) (string, error) {
	m := BlockJSON{}

	err := c.get(ctx, c.endpoint+"/v1/blocks/latest", &m)
	if err != nil {
		return "", node.NewError("fetch latest block", err)
	}

	return m.ID, nil
}

// GetSequenceNumber implements node.Client. It fetches the sequence number of
// the key of the account.
func (c Client) GetSequenceNumber(ctx context.Context, address string, keyID uint64) (uint64, error) {
	m := AccountKeyJSON{}

	url := fmt.Sprintf("%s/v1/accounts/%s/keys/%d", c.endpoint, address, keyID)

	err := c.get(ctx, url, &m)
	if err != nil {
		return 0, node.NewError("fetch sequence number", err)
	}

	return m.SequenceNumber, nil
}

// SendTransaction implements node.Client. It submits the wire envelope and
// returns the raw response bytes.
func (c Client) SendTransaction(ctx context.Context, envelope []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/v1/transactions", bytes.NewReader(envelope))
	if err != nil {
		return nil, node.NewError("send transaction", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, node.NewError("send transaction", err)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, node.NewError("send transaction", err)
	}

	if resp.StatusCode != http.StatusOK {
		err = xerrors.Errorf("node returned status %d: %s", resp.StatusCode, data)
		return nil, node.NewError("send transaction", err)
	}

	return data, nil
}

func (c Client) get(ctx context.Context, url string, m interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return xerrors.Errorf("couldn't create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return xerrors.Errorf("request failed: %v", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return xerrors.Errorf("node returned status %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(m)
	if err != nil {
		return xerrors.Errorf("couldn't decode response: %v", err)
	}

	return nil
}
