package interaction

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/itx/internal/testing/fake"
)

func TestTypeTag_Recognized(t *testing.T) {
	require.True(t, TypeString.Recognized())
	require.True(t, TypeBool.Recognized())
	require.True(t, TypeInt.Recognized())
	require.True(t, TypeUInt.Recognized())
	require.True(t, TypeAddress.Recognized())
	require.True(t, TypeBytes.Recognized())
	require.False(t, TypeTag("Nope").Recognized())
}

func TestArgument_Encode(t *testing.T) {
	ctx := fake.NewContext()

	table := []struct {
		arg      Argument
		expected string
	}{
		{Argument{Type: TypeString, Value: "hello"}, `{"type":"String","value":"hello"}`},
		{Argument{Type: TypeBool, Value: true}, `{"type":"Bool","value":"true"}`},
		{Argument{Type: TypeInt, Value: -4}, `{"type":"Int","value":"-4"}`},
		{Argument{Type: TypeInt, Value: int64(12)}, `{"type":"Int","value":"12"}`},
		{Argument{Type: TypeUInt, Value: uint64(42)}, `{"type":"UInt64","value":"42"}`},
		{Argument{Type: TypeAddress, Value: "0xdeadbeef"}, `{"type":"Address","value":"0xdeadbeef"}`},
		{Argument{Type: TypeBytes, Value: []byte{1, 2}}, `{"type":"Bytes","value":"0102"}`},
	}

	for _, entry := range table {
		data, err := entry.arg.Encode(ctx)
		require.NoError(t, err)
		require.Equal(t, entry.expected, string(data))
	}
}

func TestArgument_Encode_Mismatch(t *testing.T) {
	ctx := fake.NewContext()

	arg := Argument{Name: "a", Type: TypeString, Value: 12}

	_, err := arg.Encode(ctx)
	require.EqualError(t, err, "argument 'a' has value of type 'int' instead of String")

	arg = Argument{Name: "a", Type: TypeBool, Value: "true"}

	_, err = arg.Encode(ctx)
	require.EqualError(t, err, "argument 'a' has value of type 'string' instead of Bool")

	arg = Argument{Name: "a", Type: TypeTag("Nope")}

	_, err = arg.Encode(ctx)
	require.EqualError(t, err, "unrecognized type tag 'Nope' for argument 'a'")
}

func TestArgument_Encode_BadContext(t *testing.T) {
	arg := Argument{Name: "a", Type: TypeString, Value: "hello"}

	_, err := arg.Encode(fake.NewBadContext())
	require.EqualError(t, err, fake.Err("couldn't marshal argument 'a'"))
}
