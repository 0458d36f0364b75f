// Package json defines the JSON format engine of the wire envelope.
//
// The envelope is the wire-ready encoding of a resolved interaction. Its
// field names and layout are fixed so that the encoding is reproduced
// bit-exact where compatibility matters.
package json

import (
	"encoding/json"

	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/serde"
	"golang.org/x/xerrors"
)

func init() {
	interaction.RegisterInteractionFormat(serde.FormatJSON, envFormat{})
}

// ParameterJSON is the JSON message of a declared script parameter.
type ParameterJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ScriptJSON is the JSON message of a script.
type ScriptJSON struct {
	Text   string          `json:"text"`
	Params []ParameterJSON `json:"params,omitempty"`
}

// ProposalKeyJSON is the JSON message of a proposal key.
type ProposalKeyJSON struct {
	Address        string `json:"address"`
	KeyID          uint64 `json:"keyId"`
	SequenceNumber uint64 `json:"sequenceNumber"`
}

// SignatureJSON is the JSON message of a payload or envelope signature.
type SignatureJSON struct {
	Address   string `json:"address"`
	KeyID     uint64 `json:"keyId"`
	Signature []byte `json:"signature"`
}

// EnvelopeJSON is the JSON message of the wire envelope.
type EnvelopeJSON struct {
	Script             ScriptJSON        `json:"script"`
	Arguments          []json.RawMessage `json:"arguments"`
	ReferenceBlockID   string            `json:"referenceBlockId"`
	ComputeLimit       uint64            `json:"computeLimit"`
	ProposalKey        ProposalKeyJSON   `json:"proposalKey"`
	Payer              string            `json:"payer"`
	Authorizers        []string          `json:"authorizers"`
	PayloadSignatures  []SignatureJSON   `json:"payloadSignatures"`
	EnvelopeSignatures []SignatureJSON   `json:"envelopeSignatures"`
}

// EnvFormat is the JSON format engine for interactions.
//
// - implements serde.FormatEngine
type envFormat struct{}

// Encode implements serde.FormatEngine. It returns the wire envelope of the
// interaction in JSON if appropriate, otherwise it returns an error.
func (envFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	ix, ok := msg.(*interaction.Interaction)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	pk := ix.GetProposalKey()
	if pk.SequenceNumber == nil {
		return nil, xerrors.New("missing proposal key sequence number")
	}

	ixArgs := ix.GetArguments()

	args := make([]json.RawMessage, len(ixArgs))
	for i, arg := range ixArgs {
		if arg.Encoded == nil {
			return nil, xerrors.Errorf("argument '%s' is not encoded", arg.Name)
		}

		args[i] = arg.Encoded
	}

	script := ScriptJSON{
		Text: ix.GetScript().Text,
	}

	for _, param := range ix.GetScript().Params {
		script.Params = append(script.Params, ParameterJSON{
			Name: param.Name,
			Type: string(param.Type),
		})
	}

	m := EnvelopeJSON{
		Script:           script,
		Arguments:        args,
		ReferenceBlockID: ix.GetRefBlock(),
		ComputeLimit:     ix.GetComputeLimit(),
		ProposalKey: ProposalKeyJSON{
			Address:        pk.Address,
			KeyID:          pk.KeyID,
			SequenceNumber: *pk.SequenceNumber,
		},
		Payer:              ix.GetPayer(),
		Authorizers:        ix.GetAuthorizers(),
		PayloadSignatures:  encodeSignatures(ix.GetPayloadSignatures()),
		EnvelopeSignatures: encodeSignatures(ix.GetEnvelopeSignatures()),
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It returns the frozen interaction of
// the wire envelope if appropriate, otherwise it returns an error.
func (envFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := EnvelopeJSON{}
	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	script := interaction.Script{
		Text: m.Script.Text,
	}

	for _, param := range m.Script.Params {
		script.Params = append(script.Params, interaction.Parameter{
			Name: param.Name,
			Type: interaction.TypeTag(param.Type),
		})
	}

	args := make([]interaction.Argument, len(m.Arguments))
	for i, raw := range m.Arguments {
		args[i] = interaction.Argument{Encoded: raw}
	}

	seqNum := m.ProposalKey.SequenceNumber

	ix := interaction.FromEnvelope(
		script,
		args,
		m.ReferenceBlockID,
		m.ComputeLimit,
		interaction.ProposalKey{
			Address:        m.ProposalKey.Address,
			KeyID:          m.ProposalKey.KeyID,
			SequenceNumber: &seqNum,
		},
		m.Payer,
		m.Authorizers,
		decodeSignatures(m.PayloadSignatures),
		decodeSignatures(m.EnvelopeSignatures),
	)

	return ix, nil
}

func encodeSignatures(sigs []interaction.Signature) []SignatureJSON {
	out := make([]SignatureJSON, len(sigs))
	for i, sig := range sigs {
		out[i] = SignatureJSON{
			Address:   sig.Address,
			KeyID:     sig.KeyID,
			Signature: sig.Signature,
		}
	}

	return out
}

func decodeSignatures(sigs []SignatureJSON) []interaction.Signature {
	out := make([]interaction.Signature, len(sigs))
	for i, sig := range sigs {
		out[i] = interaction.Signature{
			Address:   sig.Address,
			KeyID:     sig.KeyID,
			Signature: sig.Signature,
		}
	}

	return out
}
