package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/itx/access"
	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/internal/testing/fake"
)

func TestBlockStep_Resolve(t *testing.T) {
	client := fake.NewClient()
	step := NewBlockStep(client)

	require.Equal(t, StepRefBlock, step.Name())
	require.Empty(t, step.Requires())

	ix := interaction.New()

	err := step.Resolve(context.Background(), ix)
	require.NoError(t, err)
	require.Equal(t, "deadbeef", ix.GetRefBlock())
	require.Equal(t, 1, client.Call.Len())
}

func TestBlockStep_Resolve_Declared(t *testing.T) {
	client := fake.NewClient()
	step := NewBlockStep(client)

	ix := interaction.New()
	require.NoError(t, ix.SetRefBlock("RB"))

	err := step.Resolve(context.Background(), ix)
	require.NoError(t, err)
	require.Equal(t, "RB", ix.GetRefBlock())

	// A declared reference block is never overwritten.
	require.Equal(t, 0, client.Call.Len())
}

func TestBlockStep_Resolve_BadClient(t *testing.T) {
	step := NewBlockStep(fake.NewBadBlockClient())

	err := step.Resolve(context.Background(), interaction.New())
	require.EqualError(t, err, fake.Err(
		"couldn't fetch latest block: couldn't fetch latest block"))
}

func TestAccountsStep_Resolve(t *testing.T) {
	step := NewAccountsStep()

	require.Equal(t, StepAccounts, step.Name())
	require.Empty(t, step.Requires())

	seq := uint64(9)

	proposer := access.Concrete{Address: "A", KeyID: 1, SequenceNumber: &seq}
	payer := access.Concrete{Address: "B", KeyID: 0}
	authorizer := access.Resolvable(
		func(context.Context, access.RoleSet) (access.Concrete, error) {
			return access.Concrete{Address: "C", KeyID: 2}, nil
		})

	ix := interaction.New()
	require.NoError(t, ix.SetProposer(proposer))
	require.NoError(t, ix.SetPayer(payer))
	require.NoError(t, ix.AddAuthorizer(authorizer))

	err := step.Resolve(context.Background(), ix)
	require.NoError(t, err)

	accounts := ix.GetAccounts()
	require.Len(t, accounts, 3)
	require.Equal(t, "A", accounts[0].Address)
	require.True(t, accounts[0].Roles.Proposer)
	require.Equal(t, "B", accounts[1].Address)
	require.True(t, accounts[1].Roles.Payer)
	require.Equal(t, "C", accounts[2].Address)
	require.True(t, accounts[2].Roles.Authorizer)

	pk := ix.GetProposalKey()
	require.Equal(t, "A", pk.Address)
	require.Equal(t, uint64(1), pk.KeyID)
	require.Equal(t, uint64(9), *pk.SequenceNumber)

	require.Equal(t, "B", ix.GetPayer())
	require.Equal(t, []string{"C"}, ix.GetAuthorizers())
}

func TestAccountsStep_Resolve_SharedKey(t *testing.T) {
	step := NewAccountsStep()

	authz := access.Concrete{Address: "A", KeyID: 1}

	ix := interaction.New()
	require.NoError(t, ix.SetProposer(authz))
	require.NoError(t, ix.SetPayer(authz))
	require.NoError(t, ix.AddAuthorizer(authz))

	err := step.Resolve(context.Background(), ix)
	require.NoError(t, err)

	accounts := ix.GetAccounts()
	require.Len(t, accounts, 1)
	require.True(t, accounts[0].Roles.Proposer)
	require.True(t, accounts[0].Roles.Payer)
	require.True(t, accounts[0].Roles.Authorizer)

	// Resolving again produces no duplicate entry.
	err = step.Resolve(context.Background(), ix)
	require.NoError(t, err)
	require.Len(t, ix.GetAccounts(), 1)
}

func TestAccountsStep_Resolve_Failures(t *testing.T) {
	step := NewAccountsStep()

	bad := access.Resolvable(
		func(context.Context, access.RoleSet) (access.Concrete, error) {
			return access.Concrete{}, fake.GetError()
		})

	ix := interaction.New()
	require.NoError(t, ix.SetProposer(access.Concrete{Address: "A", KeyID: 1}))
	require.NoError(t, ix.SetPayer(bad))

	err := step.Resolve(context.Background(), ix)
	require.EqualError(t, err, fake.Err("couldn't resolve authorization"))

	// A single failure aborts the step with no partial merge.
	require.Empty(t, ix.GetAccounts())

	empty := access.Resolvable(
		func(context.Context, access.RoleSet) (access.Concrete, error) {
			return access.Concrete{}, nil
		})

	ix = interaction.New()
	require.NoError(t, ix.SetProposer(empty))

	err = step.Resolve(context.Background(), ix)
	require.EqualError(t, err, "authorization returned an empty address")
}

func TestAccountsStep_Resolve_MissingRoles(t *testing.T) {
	step := NewAccountsStep()

	ix := interaction.New()
	require.NoError(t, ix.SetPayer(access.Concrete{Address: "B", KeyID: 0}))

	err := step.Resolve(context.Background(), ix)
	require.EqualError(t, err, "no proposer declared")

	ix = interaction.New()
	require.NoError(t, ix.SetProposer(access.Concrete{Address: "A", KeyID: 1}))

	err = step.Resolve(context.Background(), ix)
	require.EqualError(t, err, "no payer declared")
}

func TestSequenceStep_Resolve(t *testing.T) {
	client := fake.NewClient()
	step := NewSequenceStep(client)

	require.Equal(t, StepSequence, step.Name())
	require.Equal(t, []string{StepAccounts}, step.Requires())

	ix := interaction.New()
	require.NoError(t, ix.MergeAccount(interaction.Account{Address: "A", KeyID: 1}))
	require.NoError(t, ix.SetProposalKey(interaction.ProposalKey{Address: "A", KeyID: 1}))

	err := step.Resolve(context.Background(), ix)
	require.NoError(t, err)
	require.Equal(t, uint64(42), *ix.GetProposalKey().SequenceNumber)

	account, found := ix.GetAccount(interaction.Key{Address: "A", KeyID: 1})
	require.True(t, found)
	require.Equal(t, uint64(42), *account.SequenceNumber)
}

func TestSequenceStep_Resolve_AlreadyKnown(t *testing.T) {
	client := fake.NewClient()
	step := NewSequenceStep(client)

	seq := uint64(9)

	ix := interaction.New()
	err := ix.SetProposalKey(interaction.ProposalKey{
		Address:        "A",
		KeyID:          1,
		SequenceNumber: &seq,
	})
	require.NoError(t, err)

	err = step.Resolve(context.Background(), ix)
	require.NoError(t, err)
	require.Equal(t, uint64(9), *ix.GetProposalKey().SequenceNumber)

	// A known sequence number is never fetched again.
	require.Equal(t, 0, client.Call.Len())
}

func TestSequenceStep_Resolve_BadClient(t *testing.T) {
	step := NewSequenceStep(fake.NewBadNonceClient())

	ix := interaction.New()
	require.NoError(t, ix.SetProposalKey(interaction.ProposalKey{Address: "A", KeyID: 1}))

	err := step.Resolve(context.Background(), ix)
	require.EqualError(t, err, fake.Err(
		"couldn't fetch sequence number: couldn't fetch sequence number"))
}

func TestSequenceStep_Resolve_UnknownAccount(t *testing.T) {
	step := NewSequenceStep(fake.NewClient())

	ix := interaction.New()
	require.NoError(t, ix.SetProposalKey(interaction.ProposalKey{Address: "A", KeyID: 1}))

	err := step.Resolve(context.Background(), ix)
	require.EqualError(t, err, "no account 'A' with key 1")
}

func TestArgumentsStep_Resolve(t *testing.T) {
	step := NewArgumentsStep(fake.NewContext())

	require.Equal(t, StepArguments, step.Name())
	require.Empty(t, step.Requires())

	ix := interaction.New()
	require.NoError(t, ix.AddArgument(interaction.Argument{
		Name:  "n",
		Type:  interaction.TypeString,
		Value: "hello",
	}))
	require.NoError(t, ix.AddArgument(interaction.Argument{
		Name:    "m",
		Type:    interaction.TypeBool,
		Value:   true,
		Encoded: []byte("preset"),
	}))

	err := step.Resolve(context.Background(), ix)
	require.NoError(t, err)

	args := ix.GetArguments()
	require.Equal(t, `{"type":"String","value":"hello"}`, string(args[0].Encoded))

	// An already-encoded argument is left untouched.
	require.Equal(t, "preset", string(args[1].Encoded))
}

func TestArgumentsStep_Resolve_BadContext(t *testing.T) {
	step := NewArgumentsStep(fake.NewBadContext())

	ix := interaction.New()
	require.NoError(t, ix.AddArgument(interaction.Argument{
		Name:  "n",
		Type:  interaction.TypeString,
		Value: "hello",
	}))

	err := step.Resolve(context.Background(), ix)
	require.EqualError(t, err, fake.Err(
		"couldn't encode argument: couldn't marshal argument 'n'"))
}

func TestSignaturesStep_Requires(t *testing.T) {
	step := signaturesStep{}

	require.Equal(t, StepSignatures, step.Name())
	require.Equal(t,
		[]string{StepRefBlock, StepAccounts, StepSequence, StepArguments},
		step.Requires())
}

func TestValidatorsStep_Resolve(t *testing.T) {
	step := NewValidatorsStep()

	require.Equal(t, StepValidators, step.Name())
	require.Equal(t,
		[]string{StepRefBlock, StepAccounts, StepSequence, StepArguments, StepSignatures},
		step.Requires())

	ix := interaction.New()
	require.NoError(t, ix.AddValidator(interaction.Accept))

	err := step.Resolve(context.Background(), ix)
	require.NoError(t, err)
}
