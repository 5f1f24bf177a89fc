package services_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sorted-fund/sponsor-api/internal/services"
)

type stubFeeReader struct {
	price *big.Int
	err   error
}

func (s stubFeeReader) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return s.price, s.err
}

func TestEffectiveGasPrice(t *testing.T) {
	fallback := big.NewInt(2_000_000_000)

	tests := []struct {
		name    string
		readers map[int64]services.FeeReader
		want    string
	}{
		{
			name:    "chain query",
			readers: map[int64]services.FeeReader{14601: stubFeeReader{price: big.NewInt(7)}},
			want:    "7",
		},
		{
			name:    "chain query failure falls back",
			readers: map[int64]services.FeeReader{14601: stubFeeReader{err: errors.New("rpc timeout")}},
			want:    "2000000000",
		},
		{
			name:    "non-positive suggestion falls back",
			readers: map[int64]services.FeeReader{14601: stubFeeReader{price: big.NewInt(0)}},
			want:    "2000000000",
		},
		{
			name: "no reader falls back",
			want: "2000000000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := services.NewGasPriceServiceWithReaders(tc.readers, fallback)
			got := svc.EffectiveGasPrice(context.Background(), 14601)
			require.Equal(t, tc.want, got.String())
		})
	}
}
