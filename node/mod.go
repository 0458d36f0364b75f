// Package node defines the boundary to the node the transactions are
// submitted to.
//
// The pipeline only relies on this contract: the two read operations the
// resolver chain needs and the send operation. Decoding the raw response, as
// well as any retry policy, belongs to the caller.
package node

import (
	"context"
	"fmt"

	"go.dedis.ch/itx/serde"
)

// Client is the interface to talk to a node.
type Client interface {
	// GetLatestBlock returns the identifier of the latest block.
	GetLatestBlock(ctx context.Context) (string, error)

	// GetSequenceNumber returns the current sequence number of the key of the
	// account.
	GetSequenceNumber(ctx context.Context, address string, keyID uint64) (uint64, error)

	// SendTransaction submits the wire envelope and returns the raw response.
	SendTransaction(ctx context.Context, envelope []byte) ([]byte, error)
}

// Error is returned when the node could not be reached or refused the
// request. When the failure happens while sending, it carries the still
// valid interaction so the caller can decide on a recovery policy.
//
// - implements error
type Error struct {
	operation string
	snapshot  serde.Message
	cause     error
}

// NewError returns a new transport error for the operation.
func NewError(operation string, cause error) Error {
	return Error{
		operation: operation,
		cause:     cause,
	}
}

// Error implements error.
func (e Error) Error() string {
	return fmt.Sprintf("couldn't %s: %v", e.operation, e.cause)
}

// Unwrap returns the underlying cause.
func (e Error) Unwrap() error {
	return e.cause
}

// WithInteraction returns the error carrying the interaction snapshot at
// failure time.
func (e Error) WithInteraction(snapshot serde.Message) Error {
	e.snapshot = snapshot
	return e
}

// Interaction returns the snapshot at failure time, or nil when the failure
// happened before an interaction was at stake.
func (e Error) Interaction() serde.Message {
	return e.snapshot
}
