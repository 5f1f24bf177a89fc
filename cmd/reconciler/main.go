package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/config"
	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/logger"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

// expirySweepBatchSize bounds how many stale authorizations one invocation
// reclaims after processing its queue batch.
const expirySweepBatchSize = 100

// reconcileMessage is the queue payload produced by the chain watcher when a
// sponsored operation lands on-chain.
type reconcileMessage struct {
	ProjectID    string `json:"projectId"`
	UserOpHash   string `json:"userOpHash"`
	ActualGas    string `json:"actualGas"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type processor struct {
	reconciliation *services.ReconciliationService
	logger         *zap.Logger
}

// handleEvent reconciles each queued settlement and reports per-message
// failures so only retryable messages return to the queue.
func (p *processor) handleEvent(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	var failures []events.SQSBatchItemFailure

	for _, record := range event.Records {
		var msg reconcileMessage
		if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
			p.logger.Error("Dropping malformed reconciliation message",
				zap.String("message_id", record.MessageId),
				zap.Error(err),
			)
			continue
		}

		err := p.reconciliation.Reconcile(ctx, services.ReconcileRequest{
			ProjectID:    msg.ProjectID,
			UserOpHash:   msg.UserOpHash,
			ActualGas:    msg.ActualGas,
			Status:       msg.Status,
			ErrorMessage: msg.ErrorMessage,
		})
		if err == nil {
			continue
		}

		// Only infrastructure failures can succeed on redelivery. Anything
		// else is a bad message and retrying it would poison the queue.
		if services.KindOf(err) == services.ErrorKindInfrastructure {
			p.logger.Warn("Reconciliation failed, message will be retried",
				zap.String("message_id", record.MessageId),
				zap.String("user_op_hash", msg.UserOpHash),
				zap.Error(err),
			)
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}

		p.logger.Error("Dropping unreconcilable message",
			zap.String("message_id", record.MessageId),
			zap.String("user_op_hash", msg.UserOpHash),
			zap.Error(err),
		)
	}

	if _, err := p.reconciliation.SweepExpiredAuthorizations(ctx, expirySweepBatchSize); err != nil {
		p.logger.Error("Expiry sweep failed", zap.Error(err))
	}

	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = "local"
	}
	logger.InitLogger(stage)
	defer logger.Sync()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}

	store := db.NewStore(pool)
	ledger := services.NewFundLedgerService(store)
	gasPrices, err := services.NewGasPriceService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize gas price service", zap.Error(err))
	}

	p := &processor{
		reconciliation: services.NewReconciliationService(store, ledger, gasPrices),
		logger:         logger.Log,
	}

	lambda.Start(p.handleEvent)
}
