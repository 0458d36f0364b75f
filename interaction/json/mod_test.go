package json

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/internal/testing/fake"
)

const expectedEnvelope = `{"script":{"text":"hello","params":[{"name":"n",` +
	`"type":"String"}]},"arguments":[{"type":"String","value":"x"}],` +
	`"referenceBlockId":"RB","computeLimit":7,"proposalKey":{"address":"A",` +
	`"keyId":1,"sequenceNumber":9},"payer":"P","authorizers":["A1","A2"],` +
	`"payloadSignatures":[{"address":"S","keyId":2,"signature":"U0c="}],` +
	`"envelopeSignatures":[{"address":"E","keyId":3,"signature":"RVM="}]}`

func TestEnvFormat_Encode(t *testing.T) {
	format := envFormat{}
	ctx := fake.NewContext()

	data, err := format.Encode(ctx, makeInteraction(t))
	require.NoError(t, err)
	require.Equal(t, expectedEnvelope, string(data))

	_, err = format.Encode(ctx, fake.Message{})
	require.EqualError(t, err, "unsupported message of type 'fake.Message'")

	_, err = format.Encode(ctx, interaction.New())
	require.EqualError(t, err, "missing proposal key sequence number")

	_, err = format.Encode(fake.NewBadContext(), makeInteraction(t))
	require.EqualError(t, err, fake.Err("couldn't marshal"))
}

func TestEnvFormat_Encode_NotEncoded(t *testing.T) {
	format := envFormat{}

	ix := makeInteraction(t)

	err := ix.SetArgumentEncoded(0, nil)
	require.NoError(t, err)

	_, err = format.Encode(fake.NewContext(), ix)
	require.EqualError(t, err, "argument 'n' is not encoded")
}

func TestEnvFormat_Decode(t *testing.T) {
	format := envFormat{}
	ctx := fake.NewContext()

	msg, err := format.Decode(ctx, []byte(expectedEnvelope))
	require.NoError(t, err)

	ix, ok := msg.(*interaction.Interaction)
	require.True(t, ok)
	require.Equal(t, interaction.StatusValid, ix.GetStatus())
	require.Equal(t, "hello", ix.GetScript().Text)
	require.Equal(t, "RB", ix.GetRefBlock())
	require.Equal(t, uint64(7), ix.GetComputeLimit())
	require.Equal(t, "A", ix.GetProposalKey().Address)
	require.Equal(t, uint64(9), *ix.GetProposalKey().SequenceNumber)
	require.Equal(t, "P", ix.GetPayer())
	require.Equal(t, []string{"A1", "A2"}, ix.GetAuthorizers())
	require.Len(t, ix.GetPayloadSignatures(), 1)
	require.Len(t, ix.GetEnvelopeSignatures(), 1)

	// The decoded interaction must encode back to the same envelope.
	data, err := format.Encode(ctx, ix)
	require.NoError(t, err)
	require.Equal(t, expectedEnvelope, string(data))

	_, err = format.Decode(fake.NewBadContext(), []byte(expectedEnvelope))
	require.EqualError(t, err, fake.Err("couldn't unmarshal"))
}

// -----------------------------------------------------------------------------
// Utility functions

func makeInteraction(t *testing.T) *interaction.Interaction {
	t.Helper()

	ix := interaction.New()

	err := ix.SetScript(interaction.Script{
		Text:   "hello",
		Params: []interaction.Parameter{{Name: "n", Type: interaction.TypeString}},
	})
	require.NoError(t, err)

	err = ix.AddArgument(interaction.Argument{
		Name:  "n",
		Type:  interaction.TypeString,
		Value: "x",
	})
	require.NoError(t, err)

	err = ix.SetArgumentEncoded(0, []byte(`{"type":"String","value":"x"}`))
	require.NoError(t, err)

	require.NoError(t, ix.SetRefBlock("RB"))
	require.NoError(t, ix.SetComputeLimit(7))

	seq := uint64(9)
	err = ix.SetProposalKey(interaction.ProposalKey{
		Address:        "A",
		KeyID:          1,
		SequenceNumber: &seq,
	})
	require.NoError(t, err)

	require.NoError(t, ix.SetPayerAddress("P"))
	require.NoError(t, ix.SetAuthorizers([]string{"A1", "A2"}))

	require.NoError(t, ix.StartResolving())

	err = ix.AppendPayloadSignature(interaction.Signature{
		Address:   "S",
		KeyID:     2,
		Signature: []byte("SG"),
	})
	require.NoError(t, err)

	err = ix.AppendEnvelopeSignature(interaction.Signature{
		Address:   "E",
		KeyID:     3,
		Signature: []byte("ES"),
	})
	require.NoError(t, err)

	return ix
}
