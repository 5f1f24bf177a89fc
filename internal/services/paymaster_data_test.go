package services_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/sorted-fund/sponsor-api/internal/services"
)

func TestEncodePaymasterAndDataLayout(t *testing.T) {
	paymaster := common.HexToAddress("0x3333333333333333333333333333333333333333")
	policyHash := crypto.Keccak256Hash([]byte("policy"))
	projectIDHash := crypto.Keccak256Hash([]byte(testProjectID))
	maxCost := big.NewInt(240_000)
	expiry := uint64(1_760_000_000)
	signature := bytes.Repeat([]byte{0xab}, 65)

	encoded, err := services.EncodePaymasterAndData(paymaster, expiry, maxCost, policyHash, projectIDHash, signature)
	require.NoError(t, err)

	data, err := hexutil.Decode(encoded)
	require.NoError(t, err)
	require.Len(t, data, services.PaymasterDataLength)
	require.Len(t, data, 219)

	require.Equal(t, paymaster.Bytes(), data[0:20])
	require.Equal(t, common.LeftPadBytes(big.NewInt(30_000).Bytes(), 16), data[20:36])
	require.Equal(t, common.LeftPadBytes(big.NewInt(30_000).Bytes(), 16), data[36:52])
	require.Equal(t, common.LeftPadBytes(new(big.Int).SetUint64(expiry).Bytes(), 6), data[52:58])
	require.Equal(t, common.LeftPadBytes(maxCost.Bytes(), 32), data[58:90])
	require.Equal(t, policyHash.Bytes(), data[90:122])
	require.Equal(t, projectIDHash.Bytes(), data[122:154])
	require.Equal(t, signature, data[154:219])
}

func TestEncodePaymasterAndDataRejectsBadSignature(t *testing.T) {
	_, err := services.EncodePaymasterAndData(
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		1,
		big.NewInt(1),
		common.Hash{},
		common.Hash{},
		[]byte{0x01, 0x02},
	)
	require.Error(t, err)
}

func TestEncodePaymasterAndDataRejectsOversizedMaxCost(t *testing.T) {
	_, err := services.EncodePaymasterAndData(
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		1,
		new(big.Int).Lsh(big.NewInt(1), 257),
		common.Hash{},
		common.Hash{},
		bytes.Repeat([]byte{0x00}, 65),
	)
	require.Error(t, err)
}
