package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/stellar/anchor-platform-backend/db"
)

// Sep31TransactionModel persists SEP-31 receive transactions. The table has
// no kind column; every row is kind "receive".
type Sep31TransactionModel struct {
	dbConnectionPool db.DBConnectionPool
}

// Insert creates a new SEP-31 transaction record.
func (m *Sep31TransactionModel) Insert(ctx context.Context, txn *Transaction) (*Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO sep31_transactions
			(id, status, amount_expected, request_asset_code)
		VALUES
			($1, $2, $3, $4)
		RETURNING started_at, updated_at
	`

	err := m.dbConnectionPool.QueryRowxContext(ctx, query,
		txn.ID, txn.Status, txn.AmountExpected, txn.RequestAssetCode,
	).Scan(&txn.StartedAt, &txn.UpdatedAt)
	if err != nil {
		var pqError *pq.Error
		if errors.As(err, &pqError) && pqError.Code == "23505" { // unique_violation
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("inserting SEP-31 transaction: %w", err)
	}

	txn.Protocol = ProtocolSEP31
	txn.Kind = KindReceive
	return txn, nil
}

// GetByID retrieves a SEP-31 transaction by ID.
func (m *Sep31TransactionModel) GetByID(ctx context.Context, transactionID string) (*Transaction, error) {
	const query = `
		SELECT
			*
		FROM
			sep31_transactions
		WHERE
			id = $1
	`

	var txn Transaction
	err := m.dbConnectionPool.GetContext(ctx, &txn, query, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying SEP-31 transaction %s: %w", transactionID, err)
	}

	txn.Protocol = ProtocolSEP31
	txn.Kind = KindReceive
	return &txn, nil
}

// Save persists the mutated transaction with the same updated_at optimistic
// concurrency check as the SEP-24 store.
func (m *Sep31TransactionModel) Save(ctx context.Context, txn *Transaction) error {
	const query = `
		UPDATE sep31_transactions
		SET
			status = $1,
			amount_expected = $2,
			amount_in = $3,
			amount_in_asset = $4,
			amount_out = $5,
			amount_out_asset = $6,
			amount_fee = $7,
			amount_fee_asset = $8,
			stellar_transaction_id = $9,
			transfer_received_at = $10,
			message = $11,
			refunds = $12,
			completed_at = $13,
			updated_at = NOW()
		WHERE
			id = $14
			AND updated_at = $15
		RETURNING updated_at
	`

	err := m.dbConnectionPool.QueryRowxContext(ctx, query,
		txn.Status, txn.AmountExpected,
		txn.AmountIn, txn.AmountInAsset,
		txn.AmountOut, txn.AmountOutAsset,
		txn.AmountFee, txn.AmountFeeAsset,
		txn.StellarTransactionID, txn.TransferReceivedAt,
		txn.Message, txn.Refunds, txn.CompletedAt,
		txn.ID, txn.UpdatedAt,
	).Scan(&txn.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m.staleOrMissing(ctx, txn.ID)
		}
		return fmt.Errorf("saving SEP-31 transaction %s: %w", txn.ID, err)
	}

	return nil
}

func (m *Sep31TransactionModel) staleOrMissing(ctx context.Context, transactionID string) error {
	var exists bool
	err := m.dbConnectionPool.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM sep31_transactions WHERE id = $1)", transactionID)
	if err != nil {
		return fmt.Errorf("checking SEP-31 transaction %s existence: %w", transactionID, err)
	}
	if exists {
		return ErrStaleTransaction
	}
	return ErrRecordNotFound
}
