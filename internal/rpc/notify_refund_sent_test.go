package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

func Test_NotifyRefundSentHandler_interactiveFullRefund(t *testing.T) {
	txn := newRefundableDepositTxn()
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "95",
			"amount_fee": "5",
		},
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "refunded", resp.Status)
	require.NotNil(t, resp.Refunds)
	assert.Equal(t, "100", resp.Refunds.AmountRefunded.Amount)
	assert.Equal(t, "5", resp.Refunds.AmountFee.Amount)
	assert.NotNil(t, resp.CompletedAt)
}

func Test_NotifyRefundSentHandler_interactivePartialRefund(t *testing.T) {
	txn := newRefundableDepositTxn()
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "40",
			"amount_fee": "0",
		},
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "pending_anchor", resp.Status)
	assert.Nil(t, resp.CompletedAt)
	require.NotNil(t, resp.Refunds)
	assert.Equal(t, "40", resp.Refunds.AmountRefunded.Amount)
}

func Test_NotifyRefundSentHandler_interactiveAccumulatesAcrossRefunds(t *testing.T) {
	txn := newRefundableDepositTxn()
	txn.Refunds = &data.Refunds{
		AmountRefunded: "40",
		AmountFee:      "0",
		Payments:       []data.RefundPayment{{ID: "refund-1", Amount: "40", Fee: "0"}},
	}
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-2",
			"amount":     "58",
			"amount_fee": "2",
		},
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "refunded", resp.Status)
	require.NotNil(t, resp.Refunds)
	assert.Equal(t, "100", resp.Refunds.AmountRefunded.Amount)
	require.Len(t, resp.Refunds.Payments, 2)
}

func Test_NotifyRefundSentHandler_pendingAnchorRestatementCountsOnTopOfAggregate(t *testing.T) {
	txn := newRefundableDepositTxn()
	txn.Refunds = &data.Refunds{
		AmountRefunded: "60",
		AmountFee:      "0",
		Payments:       []data.RefundPayment{{ID: "refund-1", Amount: "60", Fee: "0"}},
	}
	env := newTestEnv(t, txn)

	// In pending_anchor the refund is counted on top of the recorded
	// aggregate even when its id collides with an earlier payment.
	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "50",
			"amount_fee": "0",
		},
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidParamsCode, rpcErr.Code)
	assert.Equal(t, "Refund amount exceeds amount_in", rpcErr.Message)
	assert.Nil(t, env.sep24.saved)
}

func Test_NotifyRefundSentHandler_confirmsInitiatedRefundWithoutPayload(t *testing.T) {
	txn := newDepositTxn(data.StatusPendingExternal)
	txn.TransferReceivedAt = timePtr(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
	txn.Refunds = &data.Refunds{
		AmountRefunded: "100",
		AmountFee:      "5",
		Payments:       []data.RefundPayment{{ID: "refund-1", Amount: "95", Fee: "5"}},
	}
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]string{
		"transaction_id": txn.ID,
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "refunded", resp.Status)
}

func Test_NotifyRefundSentHandler_pendingExternalRequiresKnownRefundID(t *testing.T) {
	txn := newDepositTxn(data.StatusPendingExternal)
	txn.TransferReceivedAt = timePtr(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
	txn.Refunds = &data.Refunds{
		AmountRefunded: "100",
		AmountFee:      "5",
		Payments:       []data.RefundPayment{{ID: "refund-1", Amount: "95", Fee: "5"}},
	}
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-2",
			"amount":     "95",
			"amount_fee": "5",
		},
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidParamsCode, rpcErr.Code)
	assert.Equal(t, "Invalid refund id", rpcErr.Message)
}

func Test_NotifyRefundSentHandler_pendingExternalRequiresReceivedTransfer(t *testing.T) {
	txn := newDepositTxn(data.StatusPendingExternal)
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "95",
			"amount_fee": "5",
		},
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidRequestCode, rpcErr.Code)
	assert.Equal(t,
		"Action[notify_refund_sent] is not supported for status[pending_external], kind[deposit] and protocol[24]",
		rpcErr.Message)
}

func Test_NotifyRefundSentHandler_withdrawalPendingStellarFullRefund(t *testing.T) {
	txn := newWithdrawalTxn(data.StatusPendingStellar)
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "95",
			"amount_fee": "5",
		},
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "refunded", resp.Status)
	assert.Equal(t, "withdrawal", resp.Kind)
	require.NotNil(t, resp.Refunds)
	assert.Equal(t, "100", resp.Refunds.AmountRefunded.Amount)
}

func Test_NotifyRefundSentHandler_withdrawalPendingAnchorPartialRefund(t *testing.T) {
	txn := newWithdrawalTxn(data.StatusPendingAnchor)
	txn.TransferReceivedAt = timePtr(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "40",
			"amount_fee": "0",
		},
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "pending_anchor", resp.Status)
}

func Test_NotifyRefundSentHandler_withdrawalPendingAnchorRequiresReceivedTransfer(t *testing.T) {
	txn := newWithdrawalTxn(data.StatusPendingAnchor)
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "40",
			"amount_fee": "0",
		},
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidRequestCode, rpcErr.Code)
	assert.Equal(t,
		"Action[notify_refund_sent] is not supported for status[pending_anchor], kind[withdrawal] and protocol[24]",
		rpcErr.Message)
}

func Test_NotifyRefundSentHandler_refundExceedsAmountIn(t *testing.T) {
	txn := newRefundableDepositTxn()
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "100",
			"amount_fee": "1",
		},
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidParamsCode, rpcErr.Code)
	assert.Equal(t, "Refund amount exceeds amount_in", rpcErr.Message)
}

func Test_NotifyRefundSentHandler_receiveFullRefund(t *testing.T) {
	txn := newReceiveTxn(data.StatusPendingReceiver)
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-1",
			"amount":     "98",
			"amount_fee": "2",
		},
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "refunded", resp.Status)
	assert.Equal(t, "31", resp.SEP)
}

func Test_NotifyRefundSentHandler_receiveRejectsSecondRefund(t *testing.T) {
	txn := newReceiveTxn(data.StatusPendingReceiver)
	txn.Refunds = &data.Refunds{
		AmountRefunded: "40",
		AmountFee:      "0",
		Payments:       []data.RefundPayment{{ID: "refund-1", Amount: "40", Fee: "0"}},
	}
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]any{
		"transaction_id": txn.ID,
		"refund": map[string]string{
			"id":         "refund-2",
			"amount":     "60",
			"amount_fee": "0",
		},
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidRequestCode, rpcErr.Code)
	assert.Equal(t, "Multiple refunds aren't supported for kind[receive]", rpcErr.Message)
}

func Test_NotifyRefundSentHandler_receivePendingStellarNeedsCustodyPayment(t *testing.T) {
	txn := newReceiveTxn(data.StatusPendingStellar)
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]string{
		"transaction_id": txn.ID,
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidRequestCode, rpcErr.Code)
	assert.Equal(t, "Custody payment hasn't been completed yet", rpcErr.Message)
}

func Test_NotifyRefundSentHandler_receivePendingStellarConfirmsCustodyRefund(t *testing.T) {
	txn := newReceiveTxn(data.StatusPendingStellar)
	txn.Refunds = &data.Refunds{
		AmountRefunded: "100",
		AmountFee:      "2",
		Payments:       []data.RefundPayment{{ID: "refund-1", Amount: "98", Fee: "2"}},
	}
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]string{
		"transaction_id": txn.ID,
	})

	require.Nil(t, rpcErr)
	require.NotNil(t, resp)
	assert.Equal(t, "refunded", resp.Status)
}

func Test_NotifyRefundSentHandler_pendingAnchorWithoutRefundIsRejected(t *testing.T) {
	txn := newRefundableDepositTxn()
	env := newTestEnv(t, txn)

	resp, rpcErr := env.handle(t, NotifyRefundSent, map[string]string{
		"transaction_id": txn.ID,
	})

	assert.Nil(t, resp)
	require.NotNil(t, rpcErr)
	assert.Equal(t, InvalidParamsCode, rpcErr.Code)
	assert.Equal(t, "refund is required", rpcErr.Message)
}
