// Package access defines the authorization abstraction of the pipeline.
//
// An authorization declares who can fill a signing role of a transaction. It
// comes in two explicit variants: a concrete authorization carries the
// address, the key identifier and the signing capability directly, while a
// resolvable authorization is an asynchronous function that produces a
// concrete one when given the roles it is filling.
//
// Both variants are consumed identically by the resolution: the declared
// proposer, payer and authorizers are resolved into account entries of the
// interaction.
package access

import (
	"context"

	"go.dedis.ch/itx/crypto"
	"go.dedis.ch/itx/serde"
	"golang.org/x/xerrors"
)

// RoleSet is the set of signing roles an account is filling.
type RoleSet struct {
	Proposer   bool
	Authorizer bool
	Payer      bool
}

// Union returns the set of roles present in either set.
func (r RoleSet) Union(other RoleSet) RoleSet {
	return RoleSet{
		Proposer:   r.Proposer || other.Proposer,
		Authorizer: r.Authorizer || other.Authorizer,
		Payer:      r.Payer || other.Payer,
	}
}

// SignsPayload returns true when the roles require a signature over the
// transaction payload, which is the case for proposers and authorizers but
// not for an account that is exclusively paying the fees.
func (r RoleSet) SignsPayload() bool {
	return r.Proposer || r.Authorizer
}

// SignRequest is the input given to a signing capability.
type SignRequest struct {
	// Message is the canonical bytes to sign.
	Message []byte

	// Address and KeyID identify the key the signature is requested from.
	Address string
	KeyID   uint64

	// Roles is the set of roles the account is filling.
	Roles RoleSet

	// Interaction is a snapshot of the interaction being signed, for
	// capabilities that need to inspect what they are signing.
	Interaction serde.Message
}

// SignResponse is the result of a signing capability. The address and key
// identifier must match the ones of the request.
type SignResponse struct {
	Address   string
	KeyID     uint64
	Signature []byte
}

// Capability is a signing capability attached to an account entry. It is
// invoked by the signature engine exactly once per signature needed.
type Capability interface {
	Sign(ctx context.Context, req SignRequest) (SignResponse, error)
}

// Authorization is the explicit two-variant capability declaring who fills
// one or more signing roles.
type Authorization interface {
	// Resolve returns the concrete authorization for the given roles.
	Resolve(ctx context.Context, roles RoleSet) (Concrete, error)
}

// Concrete is an authorization where the address, the key identifier and the
// signing capability are supplied directly.
//
// - implements access.Authorization
type Concrete struct {
	Address    string
	KeyID      uint64
	Capability Capability

	// SequenceNumber is optionally supplied by a resolvable authorization
	// that already knows the proposer key sequence number.
	SequenceNumber *uint64
}

// Resolve implements access.Authorization. It returns the concrete
// authorization itself.
func (c Concrete) Resolve(context.Context, RoleSet) (Concrete, error) {
	return c, nil
}

// Resolvable is an authorization that is resolved asynchronously, typically
// by asking an external agent which key will fill the roles.
//
// - implements access.Authorization
type Resolvable func(ctx context.Context, roles RoleSet) (Concrete, error)

// Resolve implements access.Authorization. It invokes the function.
func (r Resolvable) Resolve(ctx context.Context, roles RoleSet) (Concrete, error) {
	return r(ctx, roles)
}

// SignerCapability is a capability backed by a local signer.
//
// - implements access.Capability
type SignerCapability struct {
	address string
	keyID   uint64
	signer  crypto.Signer
}

// NewSignerCapability returns a capability that signs with the given signer.
func NewSignerCapability(address string, keyID uint64, signer crypto.Signer) SignerCapability {
	return SignerCapability{
		address: address,
		keyID:   keyID,
		signer:  signer,
	}
}

// Sign implements access.Capability. It signs the message with the underlying
// signer and returns the marshaled signature.
func (c SignerCapability) Sign(_ context.Context, req SignRequest) (SignResponse, error) {
	sig, err := c.signer.Sign(req.Message)
	if err != nil {
		return SignResponse{}, xerrors.Errorf("signer: %v", err)
	}

	data, err := sig.MarshalBinary()
	if err != nil {
		return SignResponse{}, xerrors.Errorf("couldn't marshal signature: %v", err)
	}

	return SignResponse{
		Address:   c.address,
		KeyID:     c.keyID,
		Signature: data,
	}, nil
}

// NewAuthorization returns a concrete authorization for a local signer.
func NewAuthorization(address string, keyID uint64, signer crypto.Signer) Concrete {
	return Concrete{
		Address:    address,
		KeyID:      keyID,
		Capability: NewSignerCapability(address, keyID, signer),
	}
}
