// Package sign implements the signature engine of the pipeline.
//
// The engine computes the canonical message bytes for the payload and for the
// envelope, then invokes the signing capability of each account exactly once
// per signature needed. Accounts with the proposer or authorizer role sign
// the payload, the payer signs the envelope over the payload and the now
// complete payload signatures. The signature order is the order in which the
// accounts were first introduced during the builder composition.
package sign

import (
	"context"
	"fmt"

	"go.dedis.ch/itx/access"
	"go.dedis.ch/itx/crypto"
	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/serde"
	"golang.org/x/xerrors"
)

// Domain separation tags so that payload and envelope signatures can never be
// confused for one another.
const (
	payloadTag  = "itx-payload-v1"
	envelopeTag = "itx-envelope-v1"
)

// Error is returned when a signing capability failed or returned a malformed
// response. It carries the interaction snapshot at failure time.
//
// - implements error
type Error struct {
	snapshot *interaction.Interaction
	cause    error
}

// Error implements error.
func (e Error) Error() string {
	return fmt.Sprintf("couldn't sign interaction: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e Error) Unwrap() error {
	return e.cause
}

// Interaction returns the snapshot at failure time.
func (e Error) Interaction() *interaction.Interaction {
	return e.snapshot
}

// Engine computes the unsigned messages and collects the signatures of the
// accounts of an interaction.
type Engine struct {
	hashFactory crypto.HashFactory
}

// NewEngine returns an engine using the hash factory to derive the message
// bytes.
func NewEngine(f crypto.HashFactory) Engine {
	return Engine{hashFactory: f}
}

// Sign collects the payload signatures then the envelope signatures of the
// interaction. Every account carrying a signing capability is invoked exactly
// once per signature its roles require.
func (e Engine) Sign(ctx context.Context, ix *interaction.Interaction) error {
	msg, err := e.message(payloadTag, ix.Payload())
	if err != nil {
		return Error{snapshot: ix, cause: xerrors.Errorf("payload message: %v", err)}
	}

	for _, account := range ix.GetAccounts() {
		if account.Capability == nil || !account.Roles.SignsPayload() {
			continue
		}

		sig, err := e.invoke(ctx, ix, account, msg)
		if err != nil {
			return Error{snapshot: ix, cause: err}
		}

		err = ix.AppendPayloadSignature(sig)
		if err != nil {
			return Error{snapshot: ix, cause: err}
		}
	}

	msg, err = e.message(envelopeTag, ix.Envelope())
	if err != nil {
		return Error{snapshot: ix, cause: xerrors.Errorf("envelope message: %v", err)}
	}

	for _, account := range ix.GetAccounts() {
		if account.Capability == nil || !account.Roles.Payer {
			continue
		}

		sig, err := e.invoke(ctx, ix, account, msg)
		if err != nil {
			return Error{snapshot: ix, cause: err}
		}

		err = ix.AppendEnvelopeSignature(sig)
		if err != nil {
			return Error{snapshot: ix, cause: err}
		}
	}

	return nil
}

func (e Engine) message(tag string, fp serde.Fingerprinter) ([]byte, error) {
	h := e.hashFactory.New()

	_, err := h.Write([]byte(tag))
	if err != nil {
		return nil, xerrors.Errorf("couldn't write tag: %v", err)
	}

	err = fp.Fingerprint(h)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

func (e Engine) invoke(ctx context.Context, ix *interaction.Interaction,
	account interaction.Account, msg []byte) (interaction.Signature, error) {

	resp, err := account.Capability.Sign(ctx, access.SignRequest{
		Message:     msg,
		Address:     account.Address,
		KeyID:       account.KeyID,
		Roles:       account.Roles,
		Interaction: ix,
	})
	if err != nil {
		return interaction.Signature{},
			xerrors.Errorf("capability of '%s' failed: %v", account.Address, err)
	}

	if resp.Address != account.Address || resp.KeyID != account.KeyID {
		return interaction.Signature{},
			xerrors.Errorf("capability returned key '%s'/%d instead of '%s'/%d",
				resp.Address, resp.KeyID, account.Address, account.KeyID)
	}

	if len(resp.Signature) == 0 {
		return interaction.Signature{},
			xerrors.Errorf("capability of '%s' returned an empty signature", account.Address)
	}

	return interaction.Signature{
		Address:   resp.Address,
		KeyID:     resp.KeyID,
		Signature: resp.Signature,
	}, nil
}
