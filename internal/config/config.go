package config

import (
	"context"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	awsclient "github.com/sorted-fund/sponsor-api/internal/client/aws"
)

const (
	// DefaultFallbackGasPriceWei is used when the chain fee query fails (2 Gwei).
	DefaultFallbackGasPriceWei = 2_000_000_000

	// DefaultAuthorizationTTL bounds how long a signed authorization stays valid.
	DefaultAuthorizationTTL = time.Hour
)

// Config holds all process-level configuration. It is constructed once in main
// and passed by reference into every component; nothing reads the environment
// after startup.
type Config struct {
	Stage string
	Port  string

	DatabaseURL string

	ChainID          int64
	RPCURL           string
	PaymasterAddress common.Address

	// SignerPrivateKey is the hex-encoded backend signing key. Never log it.
	SignerPrivateKey string

	FallbackGasPrice *big.Int
	AuthorizationTTL time.Duration
}

// Load builds the configuration from the environment, resolving secrets through
// AWS Secrets Manager with plain env-var fallback for local development.
func Load(ctx context.Context) (*Config, error) {
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = "local"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	chainIDStr := os.Getenv("CHAIN_ID")
	if chainIDStr == "" {
		chainIDStr = "14601"
	}
	chainID, err := strconv.ParseInt(chainIDStr, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid CHAIN_ID %q", chainIDStr)
	}

	paymaster := os.Getenv("PAYMASTER_ADDRESS")
	if !common.IsHexAddress(paymaster) {
		return nil, errors.Errorf("PAYMASTER_ADDRESS %q is not a valid address", paymaster)
	}

	cfg := &Config{
		Stage:            stage,
		Port:             port,
		ChainID:          chainID,
		RPCURL:           os.Getenv("RPC_URL"),
		PaymasterAddress: common.HexToAddress(paymaster),
		FallbackGasPrice: big.NewInt(DefaultFallbackGasPriceWei),
		AuthorizationTTL: DefaultAuthorizationTTL,
	}

	if ttlStr := os.Getenv("AUTHORIZATION_TTL_SECONDS"); ttlStr != "" {
		ttlSeconds, err := strconv.ParseInt(ttlStr, 10, 64)
		if err != nil || ttlSeconds <= 0 {
			return nil, errors.Errorf("invalid AUTHORIZATION_TTL_SECONDS %q", ttlStr)
		}
		cfg.AuthorizationTTL = time.Duration(ttlSeconds) * time.Second
	}

	if fallbackStr := os.Getenv("FALLBACK_GAS_PRICE_WEI"); fallbackStr != "" {
		fallback, ok := new(big.Int).SetString(fallbackStr, 10)
		if !ok || fallback.Sign() <= 0 {
			return nil, errors.Errorf("invalid FALLBACK_GAS_PRICE_WEI %q", fallbackStr)
		}
		cfg.FallbackGasPrice = fallback
	}

	secrets, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize secrets client")
	}

	cfg.DatabaseURL, err = secrets.GetSecretString(ctx, "DATABASE_URL_SECRET_ARN", "DATABASE_URL")
	if err != nil {
		return nil, errors.Wrap(err, "database connection string not configured")
	}

	cfg.SignerPrivateKey, err = secrets.GetSecretString(ctx, "SIGNER_PRIVATE_KEY_SECRET_ARN", "SIGNER_PRIVATE_KEY")
	if err != nil {
		return nil, errors.Wrap(err, "backend signer key not configured")
	}

	return cfg, nil
}
