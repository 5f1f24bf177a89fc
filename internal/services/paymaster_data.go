package services

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Gas limits the paymaster contract charges for verification and postOp work.
// These match the deployed contract configuration.
const (
	paymasterVerificationGasLimit = 30_000
	paymasterPostOpGasLimit       = 30_000
)

// PaymasterDataLength is the exact byte length of the encoded field:
// paymaster 20, verificationGasLimit 16, postOpGasLimit 16, expiry 6,
// maxCost 32, policyHash 32, projectIdHash 32, signature 65.
const PaymasterDataLength = 20 + 16 + 16 + 6 + 32 + 32 + 32 + 65

// EncodePaymasterAndData builds the byte string the client places in the user
// operation's paymasterAndData field. The paymaster contract slices it at
// fixed offsets, so the layout is load-bearing.
func EncodePaymasterAndData(paymaster common.Address, expiry uint64, maxCost *big.Int, policyHash, projectIDHash common.Hash, signature []byte) (string, error) {
	if len(signature) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(signature))
	}

	verificationGas, err := packUint(big.NewInt(paymasterVerificationGasLimit), 16)
	if err != nil {
		return "", err
	}
	postOpGas, err := packUint(big.NewInt(paymasterPostOpGasLimit), 16)
	if err != nil {
		return "", err
	}
	expiryBytes, err := packUint(new(big.Int).SetUint64(expiry), 6)
	if err != nil {
		return "", fmt.Errorf("invalid expiry: %w", err)
	}
	maxCostBytes, err := packUint(maxCost, 32)
	if err != nil {
		return "", fmt.Errorf("invalid max cost: %w", err)
	}

	data := make([]byte, 0, PaymasterDataLength)
	data = append(data, paymaster.Bytes()...)
	data = append(data, verificationGas...)
	data = append(data, postOpGas...)
	data = append(data, expiryBytes...)
	data = append(data, maxCostBytes...)
	data = append(data, policyHash.Bytes()...)
	data = append(data, projectIDHash.Bytes()...)
	data = append(data, signature...)

	if len(data) != PaymasterDataLength {
		return "", fmt.Errorf("encoded paymaster data is %d bytes, want %d", len(data), PaymasterDataLength)
	}
	return hexutil.Encode(data), nil
}
