package rpc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

func Test_NewGetTransactionResponse_minimalTransaction(t *testing.T) {
	txn := &data.Transaction{
		ID:               "txn-1",
		Protocol:         data.ProtocolSEP24,
		Kind:             data.KindDeposit,
		Status:           data.StatusIncomplete,
		RequestAssetCode: strPtr("USDC"),
	}

	resp := NewGetTransactionResponse(txn)

	assert.Equal(t, "txn-1", resp.ID)
	assert.Equal(t, "24", resp.SEP)
	assert.Equal(t, "deposit", resp.Kind)
	assert.Equal(t, "incomplete", resp.Status)
	// amount_expected is always present and keeps the asset hint even without
	// an amount.
	require.NotNil(t, resp.AmountExpected)
	assert.Empty(t, resp.AmountExpected.Amount)
	assert.Equal(t, "USDC", resp.AmountExpected.Asset)
	assert.Nil(t, resp.AmountIn)
	assert.Nil(t, resp.Refunds)
	assert.Nil(t, resp.StartedAt)
}

func Test_NewGetTransactionResponse_refundsCarryTheAmountInAsset(t *testing.T) {
	txn := newDepositTxn(data.StatusPendingAnchor)
	txn.Refunds = &data.Refunds{
		AmountRefunded: "42",
		AmountFee:      "2",
		Payments: []data.RefundPayment{
			{ID: "refund-1", Amount: "40", Fee: "2"},
		},
	}

	resp := NewGetTransactionResponse(txn)

	require.NotNil(t, resp.Refunds)
	assert.Equal(t, testUSDCAsset, resp.Refunds.AmountRefunded.Asset)
	assert.Equal(t, testUSDCAsset, resp.Refunds.AmountFee.Asset)
	require.Len(t, resp.Refunds.Payments, 1)
	assert.Equal(t, testUSDCAsset, resp.Refunds.Payments[0].Amount.Asset)
	assert.Equal(t, "40", resp.Refunds.Payments[0].Amount.Amount)
	assert.Equal(t, "2", resp.Refunds.Payments[0].Fee.Amount)
}

func Test_GetTransactionResponse_nullScalarsAreOmitted(t *testing.T) {
	txn := &data.Transaction{
		ID:               "txn-1",
		Protocol:         data.ProtocolSEP31,
		Kind:             data.KindReceive,
		Status:           data.StatusPendingReceiver,
		RequestAssetCode: strPtr("USDC"),
		StartedAt:        time.Date(2024, 2, 10, 10, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2024, 2, 10, 11, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(NewGetTransactionResponse(txn))
	require.NoError(t, err)

	jsonStr := string(payload)
	assert.NotContains(t, jsonStr, "amount_in")
	assert.NotContains(t, jsonStr, "stellar_transaction_id")
	assert.NotContains(t, jsonStr, "completed_at")
	assert.NotContains(t, jsonStr, "refunds")
	assert.Contains(t, jsonStr, "amount_expected")
	assert.Contains(t, jsonStr, "started_at")
}
