package rpc

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

const validStellarTxHash = "0d692b8dbb41bc9f2efce7a9be3d0502fb2348ab28fd4b2574bd7fe1a488cb36"

func Test_NotifyOnchainFundsReceivedHandler_success(t *testing.T) {
	txn := newDepositTxn(data.StatusPendingUserTransferStart)
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyOnchainFundsReceived, map[string]string{
		"transaction_id":         txn.ID,
		"stellar_transaction_id": validStellarTxHash,
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "pending_anchor", resp.Status)
	assert.Equal(t, validStellarTxHash, resp.StellarTransactionID)

	saved := env.sep24.saved
	require.NotNil(t, saved)
	require.NotNil(t, saved.TransferReceivedAt)
	assert.Equal(t, env.horizon.closeTime, *saved.TransferReceivedAt)
}

func Test_NotifyOnchainFundsReceivedHandler_horizonFallback(t *testing.T) {
	txn := newDepositTxn(data.StatusPendingUserTransferStart)
	env := newTestEnv(t, txn)
	env.horizon.err = fmt.Errorf("horizon is unreachable")

	resp, rpcErr := env.handle(t, NotifyOnchainFundsReceived, map[string]string{
		"transaction_id":         txn.ID,
		"stellar_transaction_id": validStellarTxHash,
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)

	saved := env.sep24.saved
	require.NotNil(t, saved)
	require.NotNil(t, saved.TransferReceivedAt)
	assert.WithinDuration(t, time.Now().UTC(), *saved.TransferReceivedAt, 5*time.Second)
}

func Test_NotifyOnchainFundsReceivedHandler_updatesAmounts(t *testing.T) {
	txn := newDepositTxn(data.StatusPendingUserTransferStart)
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyOnchainFundsReceived, map[string]any{
		"transaction_id":         txn.ID,
		"stellar_transaction_id": validStellarTxHash,
		"amount_in":              map[string]string{"amount": "95.5", "asset": testUSDCAsset},
		"amount_out":             map[string]string{"amount": "90", "asset": testUSDCAsset},
		"amount_fee":             map[string]string{"amount": "5.5", "asset": testUSDCAsset},
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	require.NotNil(t, resp.AmountIn)
	assert.Equal(t, "95.5", resp.AmountIn.Amount)
	require.NotNil(t, resp.AmountOut)
	assert.Equal(t, "90", resp.AmountOut.Amount)
	require.NotNil(t, resp.AmountFee)
	assert.Equal(t, "5.5", resp.AmountFee.Amount)
}

func Test_NotifyOnchainFundsReceivedHandler_validationFailures(t *testing.T) {
	testCases := []struct {
		name        string
		params      map[string]any
		wantCode    int
		wantMessage string
	}{
		{
			name: "partial amounts",
			params: map[string]any{
				"stellar_transaction_id": validStellarTxHash,
				"amount_in":              map[string]string{"amount": "95", "asset": testUSDCAsset},
			},
			wantCode:    InvalidParamsCode,
			wantMessage: "All or none of the amount_in, amount_out, and amount_fee should be set",
		},
		{
			name:        "missing stellar transaction id",
			params:      map[string]any{},
			wantCode:    InvalidParamsCode,
			wantMessage: "stellar_transaction_id is required",
		},
		{
			name: "malformed stellar transaction id",
			params: map[string]any{
				"stellar_transaction_id": "not-a-hash",
			},
			wantCode:    InvalidParamsCode,
			wantMessage: "stellar_transaction_id is not a valid transaction hash",
		},
		{
			name: "unsupported asset",
			params: map[string]any{
				"stellar_transaction_id": validStellarTxHash,
				"amount_in":              map[string]string{"amount": "95", "asset": "stellar:DOGE:GABC"},
				"amount_out":             map[string]string{"amount": "90", "asset": testUSDCAsset},
				"amount_fee":             map[string]string{"amount": "5", "asset": testUSDCAsset},
			},
			wantCode:    BadRequestCode,
			wantMessage: "amount_in.asset is not supported",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			txn := newDepositTxn(data.StatusPendingUserTransferStart)
			env := newTestEnv(t, txn)
			tc.params["transaction_id"] = txn.ID

			resp, rpcErr := env.handle(t, NotifyOnchainFundsReceived, tc.params)

			assert.Nil(t, resp)
			require.NotNil(t, rpcErr)
			assert.Equal(t, tc.wantCode, rpcErr.Code)
			assert.Equal(t, tc.wantMessage, rpcErr.Message)
		})
	}
}

func Test_NotifyOnchainFundsReceivedHandler_statusGates(t *testing.T) {
	testCases := []struct {
		name      string
		txn       *data.Transaction
		supported bool
	}{
		{
			name:      "pending_user_transfer_start is supported",
			txn:       newDepositTxn(data.StatusPendingUserTransferStart),
			supported: true,
		},
		{
			name: "pending_external without transfer is supported",
			txn: func() *data.Transaction {
				txn := newDepositTxn(data.StatusPendingExternal)
				return txn
			}(),
			supported: true,
		},
		{
			name: "pending_external with transfer already received is rejected",
			txn: func() *data.Transaction {
				txn := newDepositTxn(data.StatusPendingExternal)
				txn.TransferReceivedAt = timePtr(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
				return txn
			}(),
			supported: false,
		},
		{
			name: "withdrawal is rejected",
			txn: func() *data.Transaction {
				txn := newDepositTxn(data.StatusPendingUserTransferStart)
				txn.Kind = data.KindWithdrawal
				return txn
			}(),
			supported: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.txn)

			resp, rpcErr := env.handle(t, NotifyOnchainFundsReceived, map[string]string{
				"transaction_id":         tc.txn.ID,
				"stellar_transaction_id": validStellarTxHash,
			})

			if tc.supported {
				require.Nil(t, rpcErr)
				assert.Equal(t, "pending_anchor", resp.Status)
			} else {
				require.NotNil(t, rpcErr)
				assert.Equal(t, InvalidRequestCode, rpcErr.Code)
				assert.Contains(t, rpcErr.Message, "is not supported for status")
			}
		})
	}
}
