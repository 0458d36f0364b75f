// Package interaction defines the aggregate state of one in-progress
// transaction.
//
// An interaction is created empty, populated by merge across the builder
// composition and the resolver chain, frozen when it becomes valid or
// invalid, and discarded after a single send. Every mutation goes through a
// dedicated method so that the merge rules are enforced structurally: the
// accounts are unique by (address, key identifier) with their role flags
// unioned, the ordered fields accumulate and the scalar fields are
// last-write-wins.
//
// Documentation Last Review: 13.08.2026
package interaction

import (
	"go.dedis.ch/itx/access"
	"go.dedis.ch/itx/serde"
	"go.dedis.ch/itx/serde/registry"
	"golang.org/x/xerrors"
)

var ixFormats = registry.NewSimpleRegistry()

// RegisterInteractionFormat registers the engine for the provided format.
func RegisterInteractionFormat(f serde.Format, e serde.FormatEngine) {
	ixFormats.Register(f, e)
}

// Status is the lifecycle state of an interaction. It only ever moves
// forward.
type Status byte

const (
	// StatusBuilding is the initial state while builders are applied.
	StatusBuilding Status = iota

	// StatusResolving is the state while the resolver chain is running.
	StatusResolving

	// StatusValid is reached when every validator accepted the interaction.
	StatusValid

	// StatusInvalid is reached when a step failed or a validator rejected the
	// interaction. The reason is recorded.
	StatusInvalid

	// StatusSent is reached after the interaction has been handed to the
	// transport.
	StatusSent
)

// String implements fmt.Stringer. It returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusBuilding:
		return "BUILDING"
	case StatusResolving:
		return "RESOLVING"
	case StatusValid:
		return "VALID"
	case StatusInvalid:
		return "INVALID"
	case StatusSent:
		return "SENT"
	default:
		return "UNKNOWN"
	}
}

// Key is the composite identity of an account entry.
type Key struct {
	Address string
	KeyID   uint64
}

// Account is one canonical signer entry of the interaction. The roles are
// merged, never overwritten, when the same key is declared several times.
type Account struct {
	Address        string
	KeyID          uint64
	Roles          access.RoleSet
	SequenceNumber *uint64
	Capability     access.Capability
}

// ProposalKey identifies the key whose sequence number the transaction
// consumes.
type ProposalKey struct {
	Address        string
	KeyID          uint64
	SequenceNumber *uint64
}

// Signature is one signature entry of the payload or of the envelope.
type Signature struct {
	Address   string
	KeyID     uint64
	Signature []byte
}

// Declaration is one authorization declared by the builders together with the
// roles it fills. The declarations keep the order in which they were first
// introduced, which later decides the signature ordering.
type Declaration struct {
	Authorization access.Authorization
	Roles         access.RoleSet
}

// Interaction is the mutable-by-merge aggregate of one in-progress
// transaction.
//
// - implements serde.Message
type Interaction struct {
	status Status
	reason string

	script       Script
	args         []Argument
	refBlock     string
	computeLimit uint64

	declarations []Declaration
	validators   []Validator

	proposalKey ProposalKey
	payer       string
	authorizers []string

	accounts map[Key]*Account
	order    []Key

	payloadSigs  []Signature
	envelopeSigs []Signature
}

// New returns a new empty interaction in the building state.
func New() *Interaction {
	return &Interaction{
		status:   StatusBuilding,
		accounts: make(map[Key]*Account),
	}
}

// GetStatus returns the current status.
func (ix *Interaction) GetStatus() Status {
	return ix.status
}

// GetReason returns the diagnostic set when the interaction became invalid.
func (ix *Interaction) GetReason() string {
	return ix.reason
}

// GetScript returns the script of the interaction.
func (ix *Interaction) GetScript() Script {
	return ix.script
}

// GetArguments returns the ordered list of arguments.
func (ix *Interaction) GetArguments() []Argument {
	return append([]Argument{}, ix.args...)
}

// GetRefBlock returns the reference block identifier, which is empty until
// declared or resolved.
func (ix *Interaction) GetRefBlock() string {
	return ix.refBlock
}

// GetComputeLimit returns the execution budget.
func (ix *Interaction) GetComputeLimit() uint64 {
	return ix.computeLimit
}

// GetProposalKey returns the proposal key.
func (ix *Interaction) GetProposalKey() ProposalKey {
	return ix.proposalKey
}

// GetPayer returns the address of the fee-paying account.
func (ix *Interaction) GetPayer() string {
	return ix.payer
}

// GetAuthorizers returns the ordered addresses of the authorizers.
func (ix *Interaction) GetAuthorizers() []string {
	return append([]string{}, ix.authorizers...)
}

// GetDeclarations returns the declared authorizations in the order they were
// first introduced.
func (ix *Interaction) GetDeclarations() []Declaration {
	return append([]Declaration{}, ix.declarations...)
}

// GetValidators returns the declared validators in order.
func (ix *Interaction) GetValidators() []Validator {
	return append([]Validator{}, ix.validators...)
}

// GetAccounts returns the account entries in the order their key was first
// introduced.
func (ix *Interaction) GetAccounts() []Account {
	accounts := make([]Account, 0, len(ix.order))
	for _, key := range ix.order {
		accounts = append(accounts, *ix.accounts[key])
	}

	return accounts
}

// GetAccount returns the account entry for the key if it exists.
func (ix *Interaction) GetAccount(key Key) (Account, bool) {
	account, found := ix.accounts[key]
	if !found {
		return Account{}, false
	}

	return *account, true
}

// GetPayloadSignatures returns the signatures over the payload in order.
func (ix *Interaction) GetPayloadSignatures() []Signature {
	return append([]Signature{}, ix.payloadSigs...)
}

// GetEnvelopeSignatures returns the signatures over the envelope in order.
func (ix *Interaction) GetEnvelopeSignatures() []Signature {
	return append([]Signature{}, ix.envelopeSigs...)
}

func (ix *Interaction) frozen() bool {
	switch ix.status {
	case StatusValid, StatusInvalid, StatusSent:
		return true
	default:
		return false
	}
}

func (ix *Interaction) mutable() error {
	if ix.frozen() {
		return xerrors.Errorf("interaction is frozen in status %v", ix.status)
	}

	return nil
}

// SetScript sets the script. The last declaration wins.
func (ix *Interaction) SetScript(script Script) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.script = script

	return nil
}

// AddArgument appends an argument. The encounter order is the encoding and
// positional order for the rest of the pipeline.
func (ix *Interaction) AddArgument(arg Argument) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	if !arg.Type.Recognized() {
		return xerrors.Errorf("unrecognized type tag '%s' for argument '%s'",
			arg.Type, arg.Name)
	}

	ix.args = append(ix.args, arg)

	return nil
}

// SetArgumentEncoded stores the canonical encoding of the argument at the
// index. The declared value and order are left untouched.
func (ix *Interaction) SetArgumentEncoded(index int, data []byte) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	if index < 0 || index >= len(ix.args) {
		return xerrors.Errorf("argument index %d out of range", index)
	}

	ix.args[index].Encoded = data

	return nil
}

// SetComputeLimit sets the execution budget. The last declaration wins.
func (ix *Interaction) SetComputeLimit(limit uint64) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.computeLimit = limit

	return nil
}

// SetRefBlock sets the reference block identifier.
func (ix *Interaction) SetRefBlock(id string) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.refBlock = id

	return nil
}

// SetProposer declares the authorization filling the proposer role. A second
// declaration replaces the first one in place, so the position of the first
// introduction is preserved.
func (ix *Interaction) SetProposer(authz access.Authorization) error {
	return ix.declare(authz, access.RoleSet{Proposer: true})
}

// SetPayer declares the authorization filling the payer role. A second
// declaration replaces the first one in place.
func (ix *Interaction) SetPayer(authz access.Authorization) error {
	return ix.declare(authz, access.RoleSet{Payer: true})
}

// AddAuthorizer declares an authorization filling the authorizer role.
// Authorizer declarations accumulate in encounter order.
func (ix *Interaction) AddAuthorizer(authz access.Authorization) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.declarations = append(ix.declarations, Declaration{
		Authorization: authz,
		Roles:         access.RoleSet{Authorizer: true},
	})

	return nil
}

func (ix *Interaction) declare(authz access.Authorization, roles access.RoleSet) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	for i, decl := range ix.declarations {
		if decl.Roles.Proposer == roles.Proposer &&
			decl.Roles.Payer == roles.Payer &&
			!decl.Roles.Authorizer {

			ix.declarations[i].Authorization = authz
			return nil
		}
	}

	ix.declarations = append(ix.declarations, Declaration{
		Authorization: authz,
		Roles:         roles,
	})

	return nil
}

// AddValidator appends a validator to run over the resolved interaction.
func (ix *Interaction) AddValidator(v Validator) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.validators = append(ix.validators, v)

	return nil
}

// MergeAccount merges the entry into the accounts. The identity is the
// (address, key identifier) pair: a new key is appended in introduction
// order, an existing one has its role flags unioned and its optional fields
// filled only when they are still missing.
func (ix *Interaction) MergeAccount(account Account) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	if account.Address == "" {
		return xerrors.New("account address is empty")
	}

	key := Key{Address: account.Address, KeyID: account.KeyID}

	existing, found := ix.accounts[key]
	if !found {
		cloned := account
		ix.accounts[key] = &cloned
		ix.order = append(ix.order, key)

		return nil
	}

	existing.Roles = existing.Roles.Union(account.Roles)

	if existing.SequenceNumber == nil {
		existing.SequenceNumber = account.SequenceNumber
	}

	if existing.Capability == nil {
		existing.Capability = account.Capability
	}

	return nil
}

// SetSequenceNumber sets the sequence number of the account entry.
func (ix *Interaction) SetSequenceNumber(key Key, nonce uint64) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	account, found := ix.accounts[key]
	if !found {
		return xerrors.Errorf("no account '%s' with key %d", key.Address, key.KeyID)
	}

	account.SequenceNumber = &nonce

	return nil
}

// SetProposalKey sets the proposal key.
func (ix *Interaction) SetProposalKey(pk ProposalKey) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.proposalKey = pk

	return nil
}

// SetPayerAddress sets the resolved address of the fee-paying account.
func (ix *Interaction) SetPayerAddress(addr string) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.payer = addr

	return nil
}

// SetAuthorizers sets the resolved ordered addresses of the authorizers.
func (ix *Interaction) SetAuthorizers(addrs []string) error {
	if err := ix.mutable(); err != nil {
		return err
	}

	ix.authorizers = append([]string{}, addrs...)

	return nil
}

// AppendPayloadSignature appends a signature over the payload. Signatures are
// only accepted while the interaction is resolving.
func (ix *Interaction) AppendPayloadSignature(sig Signature) error {
	if ix.status != StatusResolving {
		return xerrors.Errorf("cannot sign in status %v", ix.status)
	}

	ix.payloadSigs = append(ix.payloadSigs, sig)

	return nil
}

// AppendEnvelopeSignature appends a signature over the envelope. Signatures
// are only accepted while the interaction is resolving.
func (ix *Interaction) AppendEnvelopeSignature(sig Signature) error {
	if ix.status != StatusResolving {
		return xerrors.Errorf("cannot sign in status %v", ix.status)
	}

	ix.envelopeSigs = append(ix.envelopeSigs, sig)

	return nil
}

// StartResolving moves the interaction from building to resolving.
func (ix *Interaction) StartResolving() error {
	if ix.status != StatusBuilding {
		return xerrors.Errorf("cannot resolve from status %v", ix.status)
	}

	ix.status = StatusResolving

	return nil
}

// MarkValid freezes the interaction as valid.
func (ix *Interaction) MarkValid() error {
	if ix.status != StatusResolving {
		return xerrors.Errorf("cannot validate from status %v", ix.status)
	}

	ix.status = StatusValid

	return nil
}

// Invalidate freezes the interaction as invalid with the reason.
func (ix *Interaction) Invalidate(reason string) error {
	if ix.frozen() {
		return xerrors.Errorf("cannot invalidate from status %v", ix.status)
	}

	ix.status = StatusInvalid
	ix.reason = reason

	return nil
}

// MarkSent records that the interaction has been handed to the transport. It
// is only permitted on a valid interaction.
func (ix *Interaction) MarkSent() error {
	if ix.status != StatusValid {
		return xerrors.Errorf("cannot send from status %v", ix.status)
	}

	ix.status = StatusSent

	return nil
}

// Serialize implements serde.Message. It returns the serialized data of the
// interaction, which is the wire envelope of the transaction.
func (ix *Interaction) Serialize(ctx serde.Context) ([]byte, error) {
	format := ixFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, ix)
	if err != nil {
		return nil, xerrors.Errorf("couldn't encode interaction: %v", err)
	}

	return data, nil
}

// FromEnvelope reassembles a frozen interaction from the fields of a wire
// envelope. The declared capabilities and validators are not part of the
// envelope, so the result can be inspected and re-encoded but not resolved
// again.
func FromEnvelope(script Script, args []Argument, refBlock string,
	limit uint64, pk ProposalKey, payer string, authorizers []string,
	payloadSigs, envelopeSigs []Signature) *Interaction {

	return &Interaction{
		status:       StatusValid,
		script:       script,
		args:         args,
		refBlock:     refBlock,
		computeLimit: limit,
		proposalKey:  pk,
		payer:        payer,
		authorizers:  append([]string{}, authorizers...),
		accounts:     make(map[Key]*Account),
		payloadSigs:  payloadSigs,
		envelopeSigs: envelopeSigs,
	}
}

// Factory deserializes the wire envelope of a transaction back into a frozen
// interaction.
//
// - implements serde.Factory
type Factory struct{}

// NewFactory returns a new factory.
func NewFactory() Factory {
	return Factory{}
}

// Deserialize implements serde.Factory. It populates the interaction from the
// data if appropriate, otherwise it returns an error.
func (f Factory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := ixFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("couldn't decode interaction: %v", err)
	}

	return msg, nil
}
