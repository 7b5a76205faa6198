package data

import (
	"errors"

	"github.com/stellar/anchor-platform-backend/db"
)

type Models struct {
	Sep24Transactions *Sep24TransactionModel
	Sep31Transactions *Sep31TransactionModel
	Assets            *AssetModel
	DBConnectionPool  db.DBConnectionPool
}

func NewModels(dbConnectionPool db.DBConnectionPool) (*Models, error) {
	if dbConnectionPool == nil {
		return nil, errors.New("dbConnectionPool is required for NewModels")
	}
	return &Models{
		Sep24Transactions: &Sep24TransactionModel{dbConnectionPool: dbConnectionPool},
		Sep31Transactions: &Sep31TransactionModel{dbConnectionPool: dbConnectionPool},
		Assets:            &AssetModel{dbConnectionPool: dbConnectionPool},
		DBConnectionPool:  dbConnectionPool,
	}, nil
}

// NewTransactionResolver builds the repository facade over the typed stores.
func (m *Models) NewTransactionResolver() *TransactionResolver {
	return &TransactionResolver{
		Sep24: m.Sep24Transactions,
		Sep31: m.Sep31Transactions,
	}
}
