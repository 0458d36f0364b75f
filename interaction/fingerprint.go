package interaction

import (
	"encoding/binary"
	"io"

	"go.dedis.ch/itx/crypto"
	"golang.org/x/xerrors"
)

// Payload is the view of an interaction covered by the payload signatures:
// the script, the encoded arguments, the reference block, the compute limit,
// the proposal key, the payer and the authorizers.
//
// - implements serde.Fingerprinter
type Payload struct {
	ix *Interaction
}

// Payload returns the payload view of the interaction.
func (ix *Interaction) Payload() Payload {
	return Payload{ix: ix}
}

// Fingerprint implements serde.Fingerprinter. It writes a deterministic
// binary representation of the payload to the writer.
func (p Payload) Fingerprint(w io.Writer) error {
	ix := p.ix

	_, err := w.Write([]byte(ix.script.Text))
	if err != nil {
		return xerrors.Errorf("couldn't write script: %v", err)
	}

	for _, param := range ix.script.Params {
		_, err = w.Write(append([]byte(param.Name), []byte(param.Type)...))
		if err != nil {
			return xerrors.Errorf("couldn't write parameter: %v", err)
		}
	}

	for _, arg := range ix.args {
		if arg.Encoded == nil {
			return xerrors.Errorf("argument '%s' is not encoded", arg.Name)
		}

		_, err = w.Write(arg.Encoded)
		if err != nil {
			return xerrors.Errorf("couldn't write argument: %v", err)
		}
	}

	if ix.refBlock == "" {
		return xerrors.New("missing reference block")
	}

	_, err = w.Write([]byte(ix.refBlock))
	if err != nil {
		return xerrors.Errorf("couldn't write reference block: %v", err)
	}

	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, ix.computeLimit)

	_, err = w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write compute limit: %v", err)
	}

	if ix.proposalKey.SequenceNumber == nil {
		return xerrors.New("missing proposal key sequence number")
	}

	err = writeKey(w, ix.proposalKey.Address, ix.proposalKey.KeyID)
	if err != nil {
		return xerrors.Errorf("couldn't write proposal key: %v", err)
	}

	binary.LittleEndian.PutUint64(buffer, *ix.proposalKey.SequenceNumber)

	_, err = w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write sequence number: %v", err)
	}

	_, err = w.Write([]byte(ix.payer))
	if err != nil {
		return xerrors.Errorf("couldn't write payer: %v", err)
	}

	for _, addr := range ix.authorizers {
		_, err = w.Write([]byte(addr))
		if err != nil {
			return xerrors.Errorf("couldn't write authorizer: %v", err)
		}
	}

	return nil
}

// Envelope is the view of an interaction covered by the envelope signatures:
// the payload followed by the payload signatures.
//
// - implements serde.Fingerprinter
type Envelope struct {
	ix *Interaction
}

// Envelope returns the envelope view of the interaction.
func (ix *Interaction) Envelope() Envelope {
	return Envelope{ix: ix}
}

// Fingerprint implements serde.Fingerprinter. It writes the payload followed
// by the payload signatures to the writer.
func (e Envelope) Fingerprint(w io.Writer) error {
	err := e.ix.Payload().Fingerprint(w)
	if err != nil {
		return xerrors.Errorf("couldn't fingerprint payload: %v", err)
	}

	for _, sig := range e.ix.payloadSigs {
		err = writeKey(w, sig.Address, sig.KeyID)
		if err != nil {
			return xerrors.Errorf("couldn't write signature key: %v", err)
		}

		_, err = w.Write(sig.Signature)
		if err != nil {
			return xerrors.Errorf("couldn't write signature: %v", err)
		}
	}

	return nil
}

// ID returns the digest identifying the transaction: the hash of the envelope
// followed by the envelope signatures.
func (ix *Interaction) ID(f crypto.HashFactory) ([]byte, error) {
	h := f.New()

	err := ix.Envelope().Fingerprint(h)
	if err != nil {
		return nil, xerrors.Errorf("couldn't fingerprint envelope: %v", err)
	}

	for _, sig := range ix.envelopeSigs {
		err = writeKey(h, sig.Address, sig.KeyID)
		if err != nil {
			return nil, xerrors.Errorf("couldn't write signature key: %v", err)
		}

		_, err = h.Write(sig.Signature)
		if err != nil {
			return nil, xerrors.Errorf("couldn't write signature: %v", err)
		}
	}

	return h.Sum(nil), nil
}

func writeKey(w io.Writer, addr string, keyID uint64) error {
	_, err := w.Write([]byte(addr))
	if err != nil {
		return xerrors.Errorf("couldn't write address: %v", err)
	}

	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, keyID)

	_, err = w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write key id: %v", err)
	}

	return nil
}
