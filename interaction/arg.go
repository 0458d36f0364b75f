package interaction

import (
	"encoding/hex"
	"strconv"

	"go.dedis.ch/itx/serde"
	"golang.org/x/xerrors"
)

// TypeTag is the declared type of an argument. It decides the codec used to
// produce the canonical wire representation of the value.
type TypeTag string

const (
	// TypeString is the tag of a UTF-8 string argument.
	TypeString TypeTag = "String"

	// TypeBool is the tag of a boolean argument.
	TypeBool TypeTag = "Bool"

	// TypeInt is the tag of a signed integer argument.
	TypeInt TypeTag = "Int"

	// TypeUInt is the tag of an unsigned integer argument.
	TypeUInt TypeTag = "UInt64"

	// TypeAddress is the tag of an account address argument.
	TypeAddress TypeTag = "Address"

	// TypeBytes is the tag of a raw byte string argument.
	TypeBytes TypeTag = "Bytes"
)

// Recognized returns true when the tag has a codec.
func (t TypeTag) Recognized() bool {
	switch t {
	case TypeString, TypeBool, TypeInt, TypeUInt, TypeAddress, TypeBytes:
		return true
	default:
		return false
	}
}

// Parameter is one declared parameter of a script.
type Parameter struct {
	Name string
	Type TypeTag
}

// Script is the opaque parameterized transaction text with its declared
// parameter schema. It is a distinct value type so that the text is never
// assembled by string concatenation.
type Script struct {
	Text   string
	Params []Parameter
}

// Argument is one declared argument of the interaction. The encoded form is
// filled by the resolver chain and covered by the signatures.
type Argument struct {
	Name    string
	Type    TypeTag
	Value   interface{}
	Encoded []byte
}

// ArgumentJSON is the canonical wire representation of an argument value.
type ArgumentJSON struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Encode returns the canonical wire representation of the argument value
// according to its type tag.
func (a Argument) Encode(ctx serde.Context) ([]byte, error) {
	value, err := a.canonical()
	if err != nil {
		return nil, err
	}

	data, err := ctx.Marshal(ArgumentJSON{
		Type:  string(a.Type),
		Value: value,
	})
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal argument '%s': %v", a.Name, err)
	}

	return data, nil
}

func (a Argument) canonical() (string, error) {
	switch a.Type {
	case TypeString:
		value, ok := a.Value.(string)
		if !ok {
			return "", a.mismatch()
		}

		return value, nil
	case TypeBool:
		value, ok := a.Value.(bool)
		if !ok {
			return "", a.mismatch()
		}

		return strconv.FormatBool(value), nil
	case TypeInt:
		switch value := a.Value.(type) {
		case int:
			return strconv.FormatInt(int64(value), 10), nil
		case int64:
			return strconv.FormatInt(value, 10), nil
		default:
			return "", a.mismatch()
		}
	case TypeUInt:
		value, ok := a.Value.(uint64)
		if !ok {
			return "", a.mismatch()
		}

		return strconv.FormatUint(value, 10), nil
	case TypeAddress:
		value, ok := a.Value.(string)
		if !ok {
			return "", a.mismatch()
		}

		return value, nil
	case TypeBytes:
		value, ok := a.Value.([]byte)
		if !ok {
			return "", a.mismatch()
		}

		return hex.EncodeToString(value), nil
	default:
		return "", xerrors.Errorf("unrecognized type tag '%s' for argument '%s'",
			a.Type, a.Name)
	}
}

func (a Argument) mismatch() error {
	return xerrors.Errorf("argument '%s' has value of type '%T' instead of %s",
		a.Name, a.Value, a.Type)
}
