package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	logger "github.com/sirupsen/logrus"
)

// ErrConfirmationTimeout is returned when a submitted transaction does not
// reach confirmed status within the configured wait.
var ErrConfirmationTimeout = fmt.Errorf("transaction confirmation timed out")

// TxStatus is the terminal outcome of a submitted transaction.
type TxStatus struct {
	Signature string
	Confirmed bool
	Err       string
}

// SolanaClient submits signed transactions to an RPC endpoint and polls for
// their confirmation. Submission is retried with exponential backoff;
// confirmation polling runs until the transaction lands or the deadline
// passes.
type SolanaClient struct {
	rpc             *rpc.Client
	confirmTimeout  time.Duration
	confirmInterval time.Duration
}

func NewSolanaClient(endpoint string, cfg Config) *SolanaClient {
	confirmTimeout := cfg.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = 60 * time.Second
	}
	confirmInterval := cfg.ConfirmInterval
	if confirmInterval <= 0 {
		confirmInterval = 500 * time.Millisecond
	}

	return &SolanaClient{
		rpc:             rpc.New(endpoint),
		confirmTimeout:  confirmTimeout,
		confirmInterval: confirmInterval,
	}
}

// Send submits a signed transaction, retrying transient RPC failures.
func (c *SolanaClient) Send(ctx context.Context, tx *solana.Transaction) (string, error) {
	var signature solana.Signature

	operation := func() error {
		var err error
		signature, err = c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			logger.WithField("connector", "solana").
				WithError(err).Warn("Retrying transaction send")
			return err
		}
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"connector": "solana",
		"signature": signature.String(),
	}).Info("Transaction submitted")

	return signature.String(), nil
}

// AwaitConfirmation polls the signature status until the transaction is
// confirmed, fails on chain, or the configured wait elapses.
func (c *SolanaClient) AwaitConfirmation(ctx context.Context, signatureStr string) (*TxStatus, error) {
	signature, err := solana.SignatureFromBase58(signatureStr)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", signatureStr, err)
	}

	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()

	deadline := time.After(c.confirmTimeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrConfirmationTimeout
		case <-ticker.C:
			response, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				logger.WithField("connector", "solana").
					WithError(err).Warn("Confirmation check failed")
				continue
			}

			if len(response.Value) == 0 || response.Value[0] == nil {
				continue
			}

			status := response.Value[0]

			if status.Err != nil {
				return &TxStatus{
					Signature: signatureStr,
					Confirmed: false,
					Err:       fmt.Sprintf("%v", status.Err),
				}, nil
			}

			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return &TxStatus{Signature: signatureStr, Confirmed: true}, nil
			}
		}
	}
}
