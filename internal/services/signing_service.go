package services

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// AuthorizationMessage is the tuple the backend attests to. The paymaster
// contract rebuilds the exact same packed encoding on-chain, so field order
// and widths here are part of the wire protocol.
type AuthorizationMessage struct {
	Sender      common.Address
	ClientNonce *big.Int
	Expiry      uint64 // unix seconds, packed as uint48
	MaxCost     *big.Int
	PolicyHash  common.Hash
	ProjectID   string
	ChainID     int64
	Paymaster   common.Address
}

// SigningService holds the backend signing key and produces authorization
// signatures the on-chain verifier accepts.
type SigningService struct {
	key     *ecdsa.PrivateKey
	address common.Address
	logger  *zap.Logger
}

// NewSigningService parses the hex-encoded private key and derives the signer
// address. The key itself is never logged.
func NewSigningService(hexKey string) (*SigningService, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signer key: %w", err)
	}

	svc := &SigningService{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		logger:  logger.Log,
	}
	svc.logger.Info("Signing service initialized", zap.String("signer_address", svc.address.Hex()))
	return svc, nil
}

// SignerAddress returns the address recovered from signatures this service
// produces.
func (s *SigningService) SignerAddress() common.Address {
	return s.address
}

// SignAuthorization packs the message fields, hashes them and signs the
// digest with an Ethereum personal-message prefix. The returned signature is
// 65 bytes with v in {27, 28}.
func (s *SigningService) SignAuthorization(msg AuthorizationMessage) ([]byte, error) {
	packed, err := packAuthorization(msg)
	if err != nil {
		return nil, err
	}

	digest := crypto.Keccak256(packed)
	sig, err := crypto.Sign(accounts.TextHash(digest), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign authorization digest: %w", err)
	}

	// go-ethereum yields v in {0, 1}; solidity ecrecover expects {27, 28}.
	sig[64] += 27
	return sig, nil
}

// packAuthorization produces the solidity abi.encodePacked equivalent of
// (sender, clientNonce, expiry, maxCost, policyHash, projectIdHash, chainId,
// paymaster): address 20, uint256 32, uint48 6, uint256 32, bytes32 32,
// bytes32 32, uint256 32, address 20.
func packAuthorization(msg AuthorizationMessage) ([]byte, error) {
	clientNonce, err := packUint(msg.ClientNonce, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid client nonce: %w", err)
	}
	expiry, err := packUint(new(big.Int).SetUint64(msg.Expiry), 6)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry: %w", err)
	}
	maxCost, err := packUint(msg.MaxCost, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid max cost: %w", err)
	}
	chainID, err := packUint(big.NewInt(msg.ChainID), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid chain id: %w", err)
	}

	projectIDHash := crypto.Keccak256Hash([]byte(msg.ProjectID))

	packed := make([]byte, 0, 20+32+6+32+32+32+32+20)
	packed = append(packed, msg.Sender.Bytes()...)
	packed = append(packed, clientNonce...)
	packed = append(packed, expiry...)
	packed = append(packed, maxCost...)
	packed = append(packed, msg.PolicyHash.Bytes()...)
	packed = append(packed, projectIDHash.Bytes()...)
	packed = append(packed, chainID...)
	packed = append(packed, msg.Paymaster.Bytes()...)
	return packed, nil
}

// packUint big-endian encodes a non-negative integer into exactly size bytes.
func packUint(v *big.Int, size int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		return nil, fmt.Errorf("value must be non-negative")
	}
	if v.BitLen() > size*8 {
		return nil, fmt.Errorf("value %s overflows %d bytes", v.String(), size)
	}
	return v.FillBytes(make([]byte, size)), nil
}
