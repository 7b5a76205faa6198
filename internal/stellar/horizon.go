package stellar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stellar/go/clients/horizonclient"
)

// HorizonService is the on-chain oracle: it answers when a Stellar
// transaction was confirmed. The dispatcher uses it to populate
// transfer_received_at, falling back to the wall clock when the lookup fails.
type HorizonService interface {
	GetTransactionCloseTime(ctx context.Context, stellarTransactionID string) (time.Time, error)
}

type horizonService struct {
	client horizonclient.ClientInterface
}

const (
	defaultRequestTimeout = 10 * time.Second
	lookupAttempts        = 3
)

func NewHorizonService(horizonURL string) HorizonService {
	return &horizonService{
		client: &horizonclient.Client{
			HorizonURL: horizonURL,
			HTTP:       &http.Client{Timeout: defaultRequestTimeout},
		},
	}
}

func NewHorizonServiceWithClient(client horizonclient.ClientInterface) HorizonService {
	return &horizonService{client: client}
}

// GetTransactionCloseTime fetches the ledger close time of the transaction
// with the given hash. Transient Horizon failures are retried a few times;
// a missing transaction is returned to the caller without retrying.
func (s *horizonService) GetTransactionCloseTime(ctx context.Context, stellarTransactionID string) (time.Time, error) {
	var closeTime time.Time

	err := retry.Do(
		func() error {
			txDetail, err := s.client.TransactionDetail(stellarTransactionID)
			if err != nil {
				wrappedErr := fmt.Errorf("fetching transaction %s from Horizon: %w", stellarTransactionID, err)
				if horizonclient.IsNotFoundError(err) {
					return retry.Unrecoverable(wrappedErr)
				}
				return wrappedErr
			}
			closeTime = txDetail.LedgerCloseTime
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(lookupAttempts),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return time.Time{}, err
	}

	return closeTime, nil
}
