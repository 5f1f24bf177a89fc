package services

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/config"
	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// gasPriceQueryTimeout bounds the chain fee query so a slow RPC node cannot
// stall authorization.
const gasPriceQueryTimeout = 5 * time.Second

// FeeReader is the subset of the chain client the gas price service needs.
type FeeReader interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// GasPriceService resolves the gas price used to compute the worst-case
// sponsorship cost. Resolution degrades from a live chain query to a static
// fallback and never fails.
type GasPriceService struct {
	readers  map[int64]FeeReader
	fallback *big.Int
	logger   *zap.Logger
}

// NewGasPriceService dials the configured RPC endpoint for the service chain.
// A missing endpoint is tolerated; the fallback price covers it.
func NewGasPriceService(cfg *config.Config) (*GasPriceService, error) {
	readers := make(map[int64]FeeReader)
	if cfg.RPCURL != "" {
		client, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, err
		}
		readers[cfg.ChainID] = client
	}

	return &GasPriceService{
		readers:  readers,
		fallback: cfg.FallbackGasPrice,
		logger:   logger.Log,
	}, nil
}

// NewGasPriceServiceWithReaders wires explicit fee readers, used in tests.
func NewGasPriceServiceWithReaders(readers map[int64]FeeReader, fallback *big.Int) *GasPriceService {
	return &GasPriceService{
		readers:  readers,
		fallback: fallback,
		logger:   logger.Log,
	}
}

// EffectiveGasPrice picks the price for the worst-case cost bound: the
// chain's suggested price when a reader is wired, the static fallback
// otherwise. Client-supplied fee fields are never trusted here; the price a
// reservation is costed at always comes from this service.
func (s *GasPriceService) EffectiveGasPrice(ctx context.Context, chainID int64) *big.Int {
	reader, ok := s.readers[chainID]
	if !ok {
		return s.fallback
	}

	queryCtx, cancel := context.WithTimeout(ctx, gasPriceQueryTimeout)
	defer cancel()

	suggested, err := reader.SuggestGasPrice(queryCtx)
	if err != nil || suggested == nil || suggested.Sign() <= 0 {
		s.logger.Warn("Gas price query failed, using fallback",
			zap.Int64("chain_id", chainID),
			zap.String("fallback_wei", s.fallback.String()),
			zap.Error(err),
		)
		return s.fallback
	}

	return suggested
}
