// Package crypto defines the cryptographic primitives needed to sign the
// payload and the envelope of an interaction.
//
// The messages covered by a signature are produced by deterministic
// fingerprinting so that two runs with the same inputs sign the same bytes.
package crypto

import (
	"encoding"
	"hash"
)

// PublicKey is a public identity that can be used to verify a signature.
type PublicKey interface {
	encoding.BinaryMarshaler

	// Equal returns true when the other public key is the same identity.
	Equal(other PublicKey) bool

	// Verify returns nil when the signature matches the message for this
	// public key.
	Verify(msg []byte, signature Signature) error
}

// Signature is a verifiable element for a unique message.
type Signature interface {
	encoding.BinaryMarshaler

	// Equal returns true when the other signature is the same.
	Equal(other Signature) bool
}

// Signer provides the primitives to sign a message.
type Signer interface {
	// GetPublicKey returns the public key of the signer.
	GetPublicKey() PublicKey

	// Sign returns a signature over the message.
	Sign(msg []byte) (Signature, error)
}

// HashFactory is an interface to produce a hash digest.
type HashFactory interface {
	New() hash.Hash
}
