// Package build defines the builder composition of the pipeline.
//
// A builder is a pure synchronous function contributing a partial patch to an
// interaction. Compose applies an ordered list of builders over a seed empty
// interaction and returns the merged result. Builders performing no I/O
// cannot fail except on malformed input, in which case the composition stops
// and no partially-merged interaction is returned.
package build

import (
	"fmt"

	"go.dedis.ch/itx/access"
	"go.dedis.ch/itx/interaction"
	"golang.org/x/xerrors"
)

// Builder is a function contributing a partial patch to the interaction. The
// patch is applied through the merge primitives of the interaction so that
// the merge rules are preserved.
type Builder func(ix *interaction.Interaction) error

// Error is returned when a builder receives malformed input. It carries the
// interaction snapshot at failure time for diagnostics.
//
// - implements error
type Error struct {
	snapshot *interaction.Interaction
	cause    error
}

// Error implements error.
func (e Error) Error() string {
	return fmt.Sprintf("couldn't build interaction: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e Error) Unwrap() error {
	return e.cause
}

// Interaction returns the snapshot at failure time.
func (e Error) Interaction() *interaction.Interaction {
	return e.snapshot
}

// Compose applies the builders in order over a new empty interaction. Either
// every builder succeeds and the merged interaction is returned, or the
// composition stops at the first malformed input.
func Compose(builders ...Builder) (*interaction.Interaction, error) {
	ix := interaction.New()

	for _, builder := range builders {
		err := builder(ix)
		if err != nil {
			return nil, Error{snapshot: ix, cause: err}
		}
	}

	return ix, nil
}

// Script declares the transaction script and its parameter schema. The last
// declaration wins.
func Script(text string, params ...interaction.Parameter) Builder {
	return func(ix *interaction.Interaction) error {
		return ix.SetScript(interaction.Script{
			Text:   text,
			Params: params,
		})
	}
}

// Arg declares an argument. Arguments accumulate in encounter order, which is
// the encoding and positional order.
func Arg(name string, tag interaction.TypeTag, value interface{}) Builder {
	return func(ix *interaction.Interaction) error {
		err := ix.AddArgument(interaction.Argument{
			Name:  name,
			Type:  tag,
			Value: value,
		})
		if err != nil {
			return xerrors.Errorf("couldn't add argument: %v", err)
		}

		return nil
	}
}

// ComputeLimit declares the execution budget. The last declaration wins.
func ComputeLimit(limit uint64) Builder {
	return func(ix *interaction.Interaction) error {
		return ix.SetComputeLimit(limit)
	}
}

// RefBlock declares the reference block identifier. When absent, the resolver
// chain fetches the latest one from the node.
func RefBlock(id string) Builder {
	return func(ix *interaction.Interaction) error {
		return ix.SetRefBlock(id)
	}
}

// Proposer declares the authorization filling the proposer role.
func Proposer(authz access.Authorization) Builder {
	return func(ix *interaction.Interaction) error {
		return ix.SetProposer(authz)
	}
}

// Payer declares the authorization filling the payer role.
func Payer(authz access.Authorization) Builder {
	return func(ix *interaction.Interaction) error {
		return ix.SetPayer(authz)
	}
}

// Authorizer declares an authorization filling the authorizer role.
// Authorizers accumulate in encounter order.
func Authorizer(authz access.Authorization) Builder {
	return func(ix *interaction.Interaction) error {
		return ix.AddAuthorizer(authz)
	}
}

// Validator declares a validator to run over the resolved interaction.
// Validators accumulate in encounter order.
func Validator(v interaction.Validator) Builder {
	return func(ix *interaction.Interaction) error {
		return ix.AddValidator(v)
	}
}
