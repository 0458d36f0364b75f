// Package validate runs the declared validators over a fully resolved
// interaction.
//
// The validators run in declaration order. The first rejection stops the
// chain immediately and no send is permitted afterwards.
package validate

import (
	"fmt"

	"go.dedis.ch/itx/interaction"
	"golang.org/x/xerrors"
)

// Error is returned when a validator rejected the interaction. It carries the
// snapshot and the reason of the rejection.
//
// - implements error
type Error struct {
	snapshot *interaction.Interaction
	reason   string
}

// Error implements error.
func (e Error) Error() string {
	return fmt.Sprintf("validator rejected interaction: %s", e.reason)
}

// Reason returns the reason of the rejection.
func (e Error) Reason() string {
	return e.reason
}

// Interaction returns the snapshot at failure time.
func (e Error) Interaction() *interaction.Interaction {
	return e.snapshot
}

// Run executes the validators of the interaction in declaration order. It
// returns nil when every validator accepted, or the rejection of the first
// validator that did not. The remaining validators do not run.
func Run(ix *interaction.Interaction) error {
	for _, validator := range ix.GetValidators() {
		result := validator(ix)

		switch r := result.(type) {
		case interaction.Accepted:
		case interaction.Rejected:
			return Error{snapshot: ix, reason: r.Reason}
		default:
			return Error{
				snapshot: ix,
				reason:   xerrors.Errorf("unknown result of type '%T'", result).Error(),
			}
		}
	}

	return nil
}
