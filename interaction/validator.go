package interaction

// Result is the two-variant outcome of a validator: either the interaction is
// accepted and the chain continues, or it is rejected with a reason and the
// chain stops.
type Result interface {
	isResult()
}

// Accepted is the result of a validator that accepts the interaction.
//
// - implements interaction.Result
type Accepted struct {
	Interaction *Interaction
}

func (Accepted) isResult() {}

// Rejected is the result of a validator that rejects the interaction.
//
// - implements interaction.Result
type Rejected struct {
	Interaction *Interaction
	Reason      string
}

func (Rejected) isResult() {}

// Validator is a check run against a fully resolved interaction.
type Validator func(ix *Interaction) Result

// Accept returns an accepting result.
func Accept(ix *Interaction) Result {
	return Accepted{Interaction: ix}
}

// Reject returns a rejecting result carrying the reason.
func Reject(ix *Interaction, reason string) Result {
	return Rejected{Interaction: ix, Reason: reason}
}
