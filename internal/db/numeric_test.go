package db

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	// Larger than uint64, exercises the arbitrary-precision path.
	v, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457", 10)
	require.True(t, ok)

	n := NumericFromBig(v)
	require.True(t, n.Valid)
	require.Equal(t, v.String(), NumericToBig(n).String())

	// The conversion must not alias the caller's value.
	v.Add(v, big.NewInt(1))
	require.NotEqual(t, v.String(), NumericToBig(n).String())
}

func TestNumericToBigAppliesExponent(t *testing.T) {
	tests := []struct {
		name string
		in   pgtype.Numeric
		want string
	}{
		{"null decodes to zero", pgtype.Numeric{}, "0"},
		{"plain integer", pgtype.Numeric{Int: big.NewInt(240000), Valid: true}, "240000"},
		{"positive exponent scales up", pgtype.Numeric{Int: big.NewInt(24), Exp: 4, Valid: true}, "240000"},
		{"negative exponent truncates", pgtype.Numeric{Int: big.NewInt(123456), Exp: -2, Valid: true}, "1234"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NumericToBig(tc.in).String())
		})
	}
}

func TestNumericFromBigNil(t *testing.T) {
	n := NumericFromBig(nil)
	require.False(t, n.Valid)
	require.Equal(t, "0", NumericToBig(n).String())
}
