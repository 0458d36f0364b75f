package crypto

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/sha3"
)

// HashAlgorithm is the identifier of a supported hash algorithm.
type HashAlgorithm int

const (
	// Sha256 identifies the SHA-256 algorithm.
	Sha256 HashAlgorithm = iota

	// Sha3_256 identifies the SHA3-256 algorithm.
	Sha3_256
)

// hashFactory is a hash factory that is using SHA algorithms.
//
// - implements crypto.HashFactory
type hashFactory struct {
	hashType HashAlgorithm
}

// NewHashFactory returns a new instance of the factory.
func NewHashFactory(a HashAlgorithm) hashFactory {
	return hashFactory{a}
}

// NewSha256Factory returns a factory for the SHA-256 algorithm.
func NewSha256Factory() hashFactory {
	return hashFactory{Sha256}
}

// New implements crypto.HashFactory. It returns a new hash instance.
func (f hashFactory) New() hash.Hash {
	switch f.hashType {
	case Sha256:
		return sha256.New()
	case Sha3_256:
		return sha3.New256()
	default:
		panic("unknown hash type")
	}
}
