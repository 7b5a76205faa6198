package rpc

import (
	"context"
	"fmt"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

// notifyRefundInitiatedHandler records that the anchor started refunding the
// user's on-chain deposit. The refund payment is attached to the transaction
// immediately; it is confirmed later by notify_refund_sent.
type notifyRefundInitiatedHandler struct {
	validator *amountValidator
}

func (h *notifyRefundInitiatedHandler) ActionType() ActionMethod {
	return NotifyRefundInitiated
}

func (h *notifyRefundInitiatedHandler) SupportedProtocols() []data.Protocol {
	return []data.Protocol{data.ProtocolSEP24}
}

func (h *notifyRefundInitiatedHandler) SupportedStatuses(txn *data.Transaction) []data.SepTransactionStatus {
	// A refund can only start after the on-chain funds actually arrived.
	if txn.Kind != data.KindDeposit || txn.TransferReceivedAt == nil {
		return nil
	}
	return []data.SepTransactionStatus{data.StatusPendingAnchor}
}

func (h *notifyRefundInitiatedHandler) NewRequest() ActionRequest {
	return &NotifyRefundInitiatedRequest{}
}

func (h *notifyRefundInitiatedHandler) Validate(ctx context.Context, txn *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyRefundInitiatedRequest)

	if req.Refund == nil {
		return InvalidParams("refund is required")
	}
	asset, err := h.validator.validateRefundAmounts(ctx, req.Refund, txn)
	if err != nil {
		return err
	}

	// The projected aggregate, with the payment already upserted, must not
	// exceed amount_in.
	projected := txn.Refunds.UpsertPayment(data.RefundPayment{
		ID:     req.Refund.ID,
		Amount: req.Refund.Amount,
		Fee:    req.Refund.AmountFee,
	})
	totalRefunded, err := projected.TotalRefunded(asset.SignificantDecimals)
	if err != nil {
		return fmt.Errorf("computing total refunded for transaction %s: %w", txn.ID, err)
	}
	amountIn, err := amountInDecimal(txn)
	if err != nil {
		return err
	}
	if totalRefunded.GreaterThan(amountIn) {
		return InvalidParams("Refund amount exceeds amount_in")
	}
	return nil
}

func (h *notifyRefundInitiatedHandler) NextStatus(_ context.Context, _ *data.Transaction, _ ActionRequest) (data.SepTransactionStatus, error) {
	return data.StatusPendingExternal, nil
}

func (h *notifyRefundInitiatedHandler) Mutate(ctx context.Context, txn *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyRefundInitiatedRequest)

	asset, err := h.validator.validateRefundAmounts(ctx, req.Refund, txn)
	if err != nil {
		return err
	}

	refunds := txn.Refunds.UpsertPayment(data.RefundPayment{
		ID:     req.Refund.ID,
		Amount: req.Refund.Amount,
		Fee:    req.Refund.AmountFee,
	})
	if err = refunds.Recalculate(asset.SignificantDecimals); err != nil {
		return fmt.Errorf("recalculating refunds for transaction %s: %w", txn.ID, err)
	}
	txn.Refunds = refunds
	return nil
}
