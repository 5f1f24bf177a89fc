package db

import (
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericFromBig converts a wei amount into a pgtype.Numeric with exponent 0.
func NumericFromBig(v *big.Int) pgtype.Numeric {
	if v == nil {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{Int: new(big.Int).Set(v), Exp: 0, Valid: true}
}

// NumericToBig converts a pgtype.Numeric back into a wei big.Int, applying the
// stored exponent. Invalid (NULL) values decode to zero.
func NumericToBig(n pgtype.Numeric) *big.Int {
	if !n.Valid || n.Int == nil {
		return new(big.Int)
	}

	v := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		mul := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		v.Mul(v, mul)
	} else if n.Exp < 0 {
		// Wei amounts are integers; a negative exponent only appears if a
		// migration wrote a scaled value. Truncate toward zero.
		div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		v.Quo(v, div)
	}
	return v
}
