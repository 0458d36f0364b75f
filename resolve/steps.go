package resolve

import (
	"context"

	"go.dedis.ch/itx/access"
	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/node"
	"go.dedis.ch/itx/serde"
	"go.dedis.ch/itx/sign"
	"go.dedis.ch/itx/validate"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// BlockStep fills the reference block identifier with the latest block of the
// node when it has not been declared.
//
// - implements resolve.Step
type blockStep struct {
	client node.Client
}

// NewBlockStep returns the reference block resolver.
func NewBlockStep(client node.Client) Step {
	return blockStep{client: client}
}

// Name implements resolve.Step.
func (blockStep) Name() string {
	return StepRefBlock
}

// Requires implements resolve.Step. It has no dependency.
func (blockStep) Requires() []string {
	return nil
}

// Resolve implements resolve.Step. It fetches the latest block identifier if
// the reference block is absent.
func (s blockStep) Resolve(ctx context.Context, ix *interaction.Interaction) error {
	if ix.GetRefBlock() != "" {
		return nil
	}

	id, err := s.client.GetLatestBlock(ctx)
	if err != nil {
		return xerrors.Errorf("couldn't fetch latest block: %v", err)
	}

	return ix.SetRefBlock(id)
}

// AccountsStep resolves every declared authorization into a canonical account
// entry.
//
// Independent resolvable authorizations run concurrently since they have no
// data dependency on each other, but the results are merged into the
// accounts one at a time, in declaration order, once every resolution
// succeeded. A single failure aborts the step and no partial account is
// merged.
//
// - implements resolve.Step
type accountsStep struct{}

// NewAccountsStep returns the accounts resolver.
func NewAccountsStep() Step {
	return accountsStep{}
}

// Name implements resolve.Step.
func (accountsStep) Name() string {
	return StepAccounts
}

// Requires implements resolve.Step. It has no dependency.
func (accountsStep) Requires() []string {
	return nil
}

// Resolve implements resolve.Step. It resolves the declarations concurrently,
// then merges the accounts and fills the proposal key, the payer and the
// authorizer addresses.
func (accountsStep) Resolve(ctx context.Context, ix *interaction.Interaction) error {
	decls := ix.GetDeclarations()

	results := make([]access.Concrete, len(decls))

	g, gctx := errgroup.WithContext(ctx)

	for i, decl := range decls {
		i, decl := i, decl

		g.Go(func() error {
			concrete, err := decl.Authorization.Resolve(gctx, decl.Roles)
			if err != nil {
				return xerrors.Errorf("couldn't resolve authorization: %v", err)
			}

			if concrete.Address == "" {
				return xerrors.New("authorization returned an empty address")
			}

			results[i] = concrete

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return err
	}

	// Single-writer merge: the concurrent resolutions are folded into the
	// accounts one at a time, in the order the declarations were first
	// introduced, which keeps the uniqueness invariant and the signature
	// ordering deterministic.
	authorizers := make([]string, 0, len(decls))

	proposer := interaction.ProposalKey{}
	foundProposer := false

	payer := ""

	for i, decl := range decls {
		concrete := results[i]

		err = ix.MergeAccount(interaction.Account{
			Address:        concrete.Address,
			KeyID:          concrete.KeyID,
			Roles:          decl.Roles,
			SequenceNumber: concrete.SequenceNumber,
			Capability:     concrete.Capability,
		})
		if err != nil {
			return xerrors.Errorf("couldn't merge account: %v", err)
		}

		if decl.Roles.Proposer {
			proposer = interaction.ProposalKey{
				Address:        concrete.Address,
				KeyID:          concrete.KeyID,
				SequenceNumber: concrete.SequenceNumber,
			}
			foundProposer = true
		}

		if decl.Roles.Payer {
			payer = concrete.Address
		}

		if decl.Roles.Authorizer {
			authorizers = append(authorizers, concrete.Address)
		}
	}

	if !foundProposer {
		return xerrors.New("no proposer declared")
	}

	if payer == "" {
		return xerrors.New("no payer declared")
	}

	if proposer.SequenceNumber == nil {
		// The account entry may already know the sequence number from an
		// earlier run or another role of the same key.
		account, found := ix.GetAccount(interaction.Key{
			Address: proposer.Address,
			KeyID:   proposer.KeyID,
		})
		if found {
			proposer.SequenceNumber = account.SequenceNumber
		}
	}

	err = ix.SetProposalKey(proposer)
	if err != nil {
		return err
	}

	err = ix.SetPayerAddress(payer)
	if err != nil {
		return err
	}

	return ix.SetAuthorizers(authorizers)
}

// SequenceStep fills the proposer sequence number from the node when neither
// the declaration nor a resolvable authorization supplied it.
//
// - implements resolve.Step
type sequenceStep struct {
	client node.Client
}

// NewSequenceStep returns the sequence number resolver.
func NewSequenceStep(client node.Client) Step {
	return sequenceStep{client: client}
}

// Name implements resolve.Step.
func (sequenceStep) Name() string {
	return StepSequence
}

// Requires implements resolve.Step. It needs the resolved proposer account
// identity.
func (sequenceStep) Requires() []string {
	return []string{StepAccounts}
}

// Resolve implements resolve.Step. It fetches the sequence number of the
// proposer key if it is still absent.
func (s sequenceStep) Resolve(ctx context.Context, ix *interaction.Interaction) error {
	pk := ix.GetProposalKey()
	if pk.SequenceNumber != nil {
		return nil
	}

	nonce, err := s.client.GetSequenceNumber(ctx, pk.Address, pk.KeyID)
	if err != nil {
		return xerrors.Errorf("couldn't fetch sequence number: %v", err)
	}

	err = ix.SetSequenceNumber(interaction.Key{Address: pk.Address, KeyID: pk.KeyID}, nonce)
	if err != nil {
		return err
	}

	pk.SequenceNumber = &nonce

	return ix.SetProposalKey(pk)
}

// ArgumentsStep encodes the declared argument values into their canonical
// wire representation. It is purely local but must run before the signatures
// because they cover the encoded form.
//
// - implements resolve.Step
type argumentsStep struct {
	sctx serde.Context
}

// NewArgumentsStep returns the arguments resolver using the serialization
// context for the canonical encoding.
func NewArgumentsStep(sctx serde.Context) Step {
	return argumentsStep{sctx: sctx}
}

// Name implements resolve.Step.
func (argumentsStep) Name() string {
	return StepArguments
}

// Requires implements resolve.Step. It has no dependency.
func (argumentsStep) Requires() []string {
	return nil
}

// Resolve implements resolve.Step. It encodes every argument that is not yet
// encoded, in declaration order.
func (s argumentsStep) Resolve(_ context.Context, ix *interaction.Interaction) error {
	for i, arg := range ix.GetArguments() {
		if arg.Encoded != nil {
			continue
		}

		data, err := arg.Encode(s.sctx)
		if err != nil {
			return xerrors.Errorf("couldn't encode argument: %v", err)
		}

		err = ix.SetArgumentEncoded(i, data)
		if err != nil {
			return err
		}
	}

	return nil
}

// SignaturesStep invokes the signature engine over the resolved interaction.
//
// - implements resolve.Step
type signaturesStep struct {
	engine sign.Engine
}

// NewSignaturesStep returns the signatures resolver.
func NewSignaturesStep(engine sign.Engine) Step {
	return signaturesStep{engine: engine}
}

// Name implements resolve.Step.
func (signaturesStep) Name() string {
	return StepSignatures
}

// Requires implements resolve.Step. The signatures cover the reference
// block, the accounts, the sequence number and the encoded arguments.
func (signaturesStep) Requires() []string {
	return []string{StepRefBlock, StepAccounts, StepSequence, StepArguments}
}

// Resolve implements resolve.Step. It collects the payload and envelope
// signatures.
func (s signaturesStep) Resolve(ctx context.Context, ix *interaction.Interaction) error {
	return s.engine.Sign(ctx, ix)
}

// ValidatorsStep runs the declared validators over the fully resolved
// interaction.
//
// - implements resolve.Step
type validatorsStep struct{}

// NewValidatorsStep returns the validators resolver.
func NewValidatorsStep() Step {
	return validatorsStep{}
}

// Name implements resolve.Step.
func (validatorsStep) Name() string {
	return StepValidators
}

// Requires implements resolve.Step. It runs last.
func (validatorsStep) Requires() []string {
	return []string{StepRefBlock, StepAccounts, StepSequence, StepArguments, StepSignatures}
}

// Resolve implements resolve.Step. It runs the validator chain.
func (validatorsStep) Resolve(_ context.Context, ix *interaction.Interaction) error {
	return validate.Run(ix)
}
