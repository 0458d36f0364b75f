// Package resolve implements the resolver chain of the pipeline.
//
// A resolver is an asynchronous step filling previously-unset fields of the
// interaction: the reference block, the account entries, the proposer
// sequence number, the encoded arguments, the signatures and finally the
// validators. Each step declares the steps it requires, and the chain refuses
// a caller-supplied ordering that violates those dependencies instead of
// silently producing incorrect signatures.
//
// The chain is fail-fast: the first failing step freezes the interaction as
// invalid with a reason naming the step, and no subsequent step runs.
package resolve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.dedis.ch/itx"
	"go.dedis.ch/itx/crypto"
	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/node"
	"go.dedis.ch/itx/serde"
	"go.dedis.ch/itx/sign"
	"go.dedis.ch/itx/validate"
	"golang.org/x/xerrors"
)

// Step names, used both for the dependency declarations and for the reason
// recorded when a step fails.
const (
	StepRefBlock   = "ref-block"
	StepAccounts   = "accounts"
	StepSequence   = "sequence-number"
	StepArguments  = "arguments"
	StepSignatures = "signatures"
	StepValidators = "validators"
)

// Step is one asynchronous resolver. It only ever adds fields to the
// interaction, never removes previously-resolved ones.
type Step interface {
	// Name returns the identifier of the step.
	Name() string

	// Requires returns the names of the steps that must have run before this
	// one.
	Requires() []string

	// Resolve fills the fields this step is responsible for.
	Resolve(ctx context.Context, ix *interaction.Interaction) error
}

// Error is returned when a resolver step failed. It carries the interaction
// snapshot at failure time and the name of the failing step.
//
// - implements error
type Error struct {
	step     string
	snapshot *interaction.Interaction
	cause    error
}

// Error implements error.
func (e Error) Error() string {
	return fmt.Sprintf("couldn't resolve '%s': %v", e.step, e.cause)
}

// Unwrap returns the underlying cause.
func (e Error) Unwrap() error {
	return e.cause
}

// Step returns the name of the failing step.
func (e Error) Step() string {
	return e.step
}

// Interaction returns the snapshot at failure time.
func (e Error) Interaction() *interaction.Interaction {
	return e.snapshot
}

// Chain is an ordered sequence of resolver steps whose declared dependencies
// have been verified.
type Chain struct {
	steps  []Step
	logger zerolog.Logger
}

// NewChain returns a chain running the steps in the given order. It returns
// an error when a step requires another one that does not appear earlier in
// the order.
func NewChain(steps ...Step) (Chain, error) {
	seen := map[string]struct{}{}

	for _, step := range steps {
		for _, req := range step.Requires() {
			_, found := seen[req]
			if !found {
				return Chain{}, xerrors.Errorf(
					"step '%s' requires '%s' to run before it", step.Name(), req)
			}
		}

		seen[step.Name()] = struct{}{}
	}

	return Chain{
		steps:  steps,
		logger: itx.Logger,
	}, nil
}

// NewDefaultChain returns the canonical chain: reference block, accounts,
// sequence number, arguments, signatures, validators.
func NewDefaultChain(client node.Client, sctx serde.Context, f crypto.HashFactory) Chain {
	return Chain{
		steps: []Step{
			NewBlockStep(client),
			NewAccountsStep(),
			NewSequenceStep(client),
			NewArgumentsStep(sctx),
			NewSignaturesStep(sign.NewEngine(f)),
			NewValidatorsStep(),
		},
		logger: itx.Logger,
	}
}

// Resolve runs the steps in order over the interaction. On success the
// interaction is frozen as valid. On the first failure it is frozen as
// invalid with a reason naming the failing step, and the error of the step is
// returned.
func (c Chain) Resolve(ctx context.Context, ix *interaction.Interaction) error {
	if ix.GetStatus() == interaction.StatusBuilding {
		err := ix.StartResolving()
		if err != nil {
			return xerrors.Errorf("couldn't start resolving: %v", err)
		}
	}

	if ix.GetStatus() != interaction.StatusResolving {
		return xerrors.Errorf("cannot resolve interaction in status %v", ix.GetStatus())
	}

	for _, step := range c.steps {
		c.logger.Trace().Str("step", step.Name()).Msg("resolving")

		err := step.Resolve(ctx, ix)
		if err != nil {
			reason := fmt.Sprintf("resolver '%s': %v", step.Name(), err)

			rejection, ok := err.(validate.Error)
			if ok {
				reason = rejection.Reason()
			}

			// The status is RESOLVING at this point so the transition cannot
			// fail.
			invErr := ix.Invalidate(reason)
			if invErr != nil {
				return xerrors.Errorf("couldn't invalidate interaction: %v", invErr)
			}

			switch err.(type) {
			case sign.Error, validate.Error:
				return err
			default:
				return Error{step: step.Name(), snapshot: ix, cause: err}
			}
		}
	}

	err := ix.MarkValid()
	if err != nil {
		return xerrors.Errorf("couldn't mark valid: %v", err)
	}

	return nil
}
