package fake

import (
	"hash"

	"go.dedis.ch/itx/crypto"
)

// BadHash is a fake hash that returns an error when writing.
//
// - implements hash.Hash
type BadHash struct {
	hash.Hash
	after int
}

// NewBadHash returns a hash that fails on the first write.
func NewBadHash() *BadHash {
	return &BadHash{}
}

// NewBadHashWithDelay returns a hash that fails after the given number of
// writes.
func NewBadHashWithDelay(delay int) *BadHash {
	return &BadHash{after: delay}
}

// Write implements io.Writer.
func (h *BadHash) Write(data []byte) (int, error) {
	if h.after > 0 {
		h.after--
		return len(data), nil
	}

	return 0, GetError()
}

// Sum implements hash.Hash.
func (h *BadHash) Sum([]byte) []byte {
	return nil
}

// HashFactory is a fake hash factory returning a configured hash.
//
// - implements crypto.HashFactory
type HashFactory struct {
	hash hash.Hash
}

// NewHashFactory returns a factory always returning the given hash.
func NewHashFactory(h hash.Hash) HashFactory {
	return HashFactory{hash: h}
}

// New implements crypto.HashFactory.
func (f HashFactory) New() hash.Hash {
	return f.hash
}

// PublicKey is a fake public key.
//
// - implements crypto.PublicKey
type PublicKey struct {
	err error
}

// NewBadPublicKey returns a public key that refuses every signature.
func NewBadPublicKey() PublicKey {
	return PublicKey{err: GetError()}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return []byte("PK"), nil
}

// Equal implements crypto.PublicKey.
func (pk PublicKey) Equal(other crypto.PublicKey) bool {
	_, ok := other.(PublicKey)
	return ok
}

// Verify implements crypto.PublicKey.
func (pk PublicKey) Verify([]byte, crypto.Signature) error {
	return pk.err
}

// Signature is a fake signature.
//
// - implements crypto.Signature
type Signature struct {
	err error
}

// NewBadSignature returns a signature that fails to marshal.
func NewBadSignature() Signature {
	return Signature{err: GetError()}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sig Signature) MarshalBinary() ([]byte, error) {
	return []byte("SIG"), sig.err
}

// Equal implements crypto.Signature.
func (sig Signature) Equal(other crypto.Signature) bool {
	_, ok := other.(Signature)
	return ok
}

// Signer is a fake signer.
//
// - implements crypto.Signer
type Signer struct {
	err error
	sig Signature
}

// NewSigner returns a signer that always succeeds.
func NewSigner() Signer {
	return Signer{}
}

// NewBadSigner returns a signer that always fails to sign.
func NewBadSigner() Signer {
	return Signer{err: GetError()}
}

// NewSignerWithBadSignature returns a signer whose signatures fail to
// marshal.
func NewSignerWithBadSignature() Signer {
	return Signer{sig: NewBadSignature()}
}

// GetPublicKey implements crypto.Signer.
func (s Signer) GetPublicKey() crypto.PublicKey {
	return PublicKey{}
}

// Sign implements crypto.Signer.
func (s Signer) Sign([]byte) (crypto.Signature, error) {
	return s.sig, s.err
}
