package types

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeSize(t *testing.T) {
	require.Equal(t, 4, IntType.Size())
	require.Equal(t, StringMaxSize+4, StringType.Size())
}

func TestIntFieldRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 42, -2147483648, 2147483647}

	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, NewIntField(v).Serialize(&buf))
		require.Equal(t, IntSize, buf.Len())

		parsed, err := ParseField(&buf, IntType)
		require.NoError(t, err)
		require.True(t, NewIntField(v).Equals(parsed))
	}
}

func TestStringFieldRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"short", "hello"},
		{"max length", strings.Repeat("x", StringMaxSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewStringField(tt.value).Serialize(&buf))
			require.Equal(t, StringSize, buf.Len())

			parsed, err := ParseField(&buf, StringType)
			require.NoError(t, err)
			require.Equal(t, tt.value, parsed.String())
		})
	}
}

func TestStringFieldTruncation(t *testing.T) {
	long := strings.Repeat("a", StringMaxSize+10)
	f := NewStringField(long)
	require.Equal(t, StringMaxSize, len(f.Value))
}

func TestParseStringFieldBadLength(t *testing.T) {
	// Length prefix claims more than the maximum payload.
	data := make([]byte, StringSize)
	data[0] = 0xFF
	data[1] = 0xFF

	_, err := ParseField(bytes.NewReader(data), StringType)
	require.Error(t, err)
}

func TestFieldEqualsAcrossTypes(t *testing.T) {
	require.False(t, NewIntField(1).Equals(NewStringField("1")))
	require.False(t, NewStringField("1").Equals(NewIntField(1)))
}
