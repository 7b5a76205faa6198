package data

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrRecordAlreadyExists = errors.New("record already exists")
	// ErrStaleTransaction is returned when the optimistic concurrency check on
	// updated_at fails during Save, meaning another mutation landed first.
	ErrStaleTransaction = errors.New("transaction was updated concurrently")
)

// Transaction is a SEP-24 or SEP-31 transaction row. The protocol is not a
// column; it is set by the store that loaded the row, and the SEP-31 store
// always loads kind "receive".
type Transaction struct {
	ID                   string               `db:"id"`
	Protocol             Protocol             `db:"-"`
	Kind                 TransactionKind      `db:"kind"`
	Status               SepTransactionStatus `db:"status"`
	AmountExpected       *string              `db:"amount_expected"`
	AmountIn             *string              `db:"amount_in"`
	AmountInAsset        *string              `db:"amount_in_asset"`
	AmountOut            *string              `db:"amount_out"`
	AmountOutAsset       *string              `db:"amount_out_asset"`
	AmountFee            *string              `db:"amount_fee"`
	AmountFeeAsset       *string              `db:"amount_fee_asset"`
	RequestAssetCode     *string              `db:"request_asset_code"`
	StellarTransactionID *string              `db:"stellar_transaction_id"`
	TransferReceivedAt   *time.Time           `db:"transfer_received_at"`
	Message              *string              `db:"message"`
	Refunds              *Refunds             `db:"refunds"`
	StartedAt            time.Time            `db:"started_at"`
	UpdatedAt            time.Time            `db:"updated_at"`
	CompletedAt          *time.Time           `db:"completed_at"`
}

// TransactionStore is the persistence contract the dispatcher depends on.
// Save must stamp updated_at and perform an optimistic concurrency check
// against the updated_at value the transaction was loaded with, returning
// ErrStaleTransaction on mismatch.
type TransactionStore interface {
	GetByID(ctx context.Context, id string) (*Transaction, error)
	Save(ctx context.Context, txn *Transaction) error
}

// TransactionResolver is the repository facade: it looks a transaction up by
// id across the SEP-24 and SEP-31 stores (they are disjoint by construction,
// SEP-24 is consulted first) and routes saves to the store owning the
// transaction's protocol.
type TransactionResolver struct {
	Sep24 TransactionStore
	Sep31 TransactionStore
}

func (r *TransactionResolver) Lookup(ctx context.Context, id string) (*Transaction, error) {
	txn, err := r.Sep24.GetByID(ctx, id)
	if err == nil {
		return txn, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}
	return r.Sep31.GetByID(ctx, id)
}

func (r *TransactionResolver) Save(ctx context.Context, txn *Transaction) error {
	switch txn.Protocol {
	case ProtocolSEP31:
		return r.Sep31.Save(ctx, txn)
	default:
		return r.Sep24.Save(ctx, txn)
	}
}
