package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

// notifyRefundSentHandler confirms a refund payment went out. For interactive
// transactions it either confirms a previously initiated refund or records and
// confirms a new one in a single step; for receive transactions a single
// refund covering the whole amount is the only shape allowed.
type notifyRefundSentHandler struct {
	validator *amountValidator
}

func (h *notifyRefundSentHandler) ActionType() ActionMethod {
	return NotifyRefundSent
}

func (h *notifyRefundSentHandler) SupportedProtocols() []data.Protocol {
	return []data.Protocol{data.ProtocolSEP24, data.ProtocolSEP31}
}

func (h *notifyRefundSentHandler) SupportedStatuses(txn *data.Transaction) []data.SepTransactionStatus {
	switch txn.Protocol {
	case data.ProtocolSEP24:
		switch txn.Kind {
		case data.KindDeposit:
			// A deposit can only be refunded after the incoming transfer landed.
			if txn.TransferReceivedAt == nil {
				return nil
			}
			return []data.SepTransactionStatus{data.StatusPendingExternal, data.StatusPendingAnchor}
		case data.KindWithdrawal:
			statuses := []data.SepTransactionStatus{data.StatusPendingStellar}
			if txn.TransferReceivedAt != nil {
				statuses = append(statuses, data.StatusPendingAnchor)
			}
			return statuses
		default:
			return nil
		}
	case data.ProtocolSEP31:
		return []data.SepTransactionStatus{data.StatusPendingReceiver, data.StatusPendingStellar}
	default:
		return nil
	}
}

func (h *notifyRefundSentHandler) NewRequest() ActionRequest {
	return &NotifyRefundSentRequest{}
}

func (h *notifyRefundSentHandler) Validate(ctx context.Context, txn *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyRefundSentRequest)
	_, _, _, err := h.projectRefunds(ctx, txn, req)
	return err
}

func (h *notifyRefundSentHandler) NextStatus(ctx context.Context, txn *data.Transaction, rawReq ActionRequest) (data.SepTransactionStatus, error) {
	req := rawReq.(*NotifyRefundSentRequest)

	_, _, totalRefunded, err := h.projectRefunds(ctx, txn, req)
	if err != nil {
		return "", err
	}
	amountIn, err := amountInDecimal(txn)
	if err != nil {
		return "", err
	}

	if totalRefunded.Equal(amountIn) {
		return data.StatusRefunded, nil
	}
	// A partial refund hands the transaction back to the anchor to decide on
	// the remainder.
	return data.StatusPendingAnchor, nil
}

func (h *notifyRefundSentHandler) Mutate(ctx context.Context, txn *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyRefundSentRequest)

	refunds, asset, _, err := h.projectRefunds(ctx, txn, req)
	if err != nil {
		return err
	}
	if err = refunds.Recalculate(asset.SignificantDecimals); err != nil {
		return fmt.Errorf("recalculating refunds for transaction %s: %w", txn.ID, err)
	}
	txn.Refunds = refunds
	return nil
}

// projectRefunds computes the refund aggregate the transaction would carry
// after this confirmation and the refunded total the status decision is based
// on, enforcing the per-protocol shape rules and the amount_in ceiling. The
// returned aggregate is detached from the transaction.
func (h *notifyRefundSentHandler) projectRefunds(ctx context.Context, txn *data.Transaction, req *NotifyRefundSentRequest) (*data.Refunds, *data.Asset, decimal.Decimal, error) {
	var refunds *data.Refunds
	var err error

	switch txn.Protocol {
	case data.ProtocolSEP31:
		refunds, err = h.projectReceiveRefunds(txn, req)
	default:
		refunds, err = h.projectInteractiveRefunds(txn, req)
	}
	if err != nil {
		return nil, nil, decimal.Zero, err
	}

	asset, err := h.refundAsset(ctx, txn, req)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}

	totalRefunded, err := h.totalRefunded(txn, req, refunds, asset)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	amountIn, err := amountInDecimal(txn)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	if totalRefunded.GreaterThan(amountIn) {
		return nil, nil, decimal.Zero, InvalidParams("Refund amount exceeds amount_in")
	}

	return refunds, asset, totalRefunded, nil
}

// totalRefunded computes the refunded total used for the status decision. In
// pending_anchor with prior refunds the restated refund counts on top of the
// recorded aggregate even when its id collides with an earlier payment; in
// the confirmation statuses the projected aggregate is authoritative.
func (h *notifyRefundSentHandler) totalRefunded(txn *data.Transaction, req *NotifyRefundSentRequest, projected *data.Refunds, asset *data.Asset) (decimal.Decimal, error) {
	if txn.Protocol == data.ProtocolSEP24 && txn.Status == data.StatusPendingAnchor && txn.Refunds.HasPayments() {
		existing, err := txn.Refunds.TotalRefunded(asset.SignificantDecimals)
		if err != nil {
			return decimal.Zero, fmt.Errorf("computing total refunded for transaction %s: %w", txn.ID, err)
		}
		restated, err := refundTotal(req.Refund)
		if err != nil {
			return decimal.Zero, err
		}
		return existing.Add(restated), nil
	}

	total, err := projected.TotalRefunded(asset.SignificantDecimals)
	if err != nil {
		return decimal.Zero, fmt.Errorf("computing total refunded for transaction %s: %w", txn.ID, err)
	}
	return total, nil
}

func (h *notifyRefundSentHandler) projectInteractiveRefunds(txn *data.Transaction, req *NotifyRefundSentRequest) (*data.Refunds, error) {
	// pending_external and pending_stellar confirm refunds that were already
	// initiated; pending_anchor records and confirms in a single step.
	confirming := txn.Status == data.StatusPendingExternal || txn.Status == data.StatusPendingStellar

	if req.Refund == nil {
		// Confirming a previously initiated refund without restating it.
		if !confirming || !txn.Refunds.HasPayments() {
			return nil, InvalidParams("refund is required")
		}
		return txn.Refunds.UpsertPayment(txn.Refunds.Payments[len(txn.Refunds.Payments)-1]), nil
	}

	// A restated refund must match an initiated payment; a new id would
	// confirm a refund that was never started.
	if confirming && txn.Refunds.HasPayments() {
		if _, found := txn.Refunds.PaymentByID(req.Refund.ID); !found {
			return nil, InvalidParams("Invalid refund id")
		}
	}

	return txn.Refunds.UpsertPayment(data.RefundPayment{
		ID:     req.Refund.ID,
		Amount: req.Refund.Amount,
		Fee:    req.Refund.AmountFee,
	}), nil
}

func (h *notifyRefundSentHandler) projectReceiveRefunds(txn *data.Transaction, req *NotifyRefundSentRequest) (*data.Refunds, error) {
	switch txn.Status {
	case data.StatusPendingStellar:
		if !txn.Refunds.HasPayments() {
			return nil, InvalidRequest("Custody payment hasn't been completed yet")
		}
		if req.Refund == nil {
			return txn.Refunds.UpsertPayment(txn.Refunds.Payments[0]), nil
		}
		if _, found := txn.Refunds.PaymentByID(req.Refund.ID); !found || len(txn.Refunds.Payments) != 1 {
			return nil, InvalidParams("Invalid refund id")
		}
	default: // pending_receiver
		if req.Refund == nil {
			return nil, InvalidParams("refund is required")
		}
		if txn.Refunds.HasPayments() {
			return nil, InvalidRequest("Multiple refunds aren't supported for kind[receive]")
		}
	}

	return txn.Refunds.UpsertPayment(data.RefundPayment{
		ID:     req.Refund.ID,
		Amount: req.Refund.Amount,
		Fee:    req.Refund.AmountFee,
	}), nil
}

// refundAsset resolves the asset the refund is denominated in, validating the
// request amounts along the way when a refund payload is present.
func (h *notifyRefundSentHandler) refundAsset(ctx context.Context, txn *data.Transaction, req *NotifyRefundSentRequest) (*data.Asset, error) {
	if req.Refund != nil {
		return h.validator.validateRefundAmounts(ctx, req.Refund, txn)
	}
	if txn.AmountInAsset == nil {
		return nil, InvalidParams("amount_in_asset is not set on the transaction")
	}
	asset, err := h.validator.assetService.GetAssetByIdentifier(ctx, *txn.AmountInAsset)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return nil, BadRequest("amount_in.asset is not supported")
		}
		return nil, InternalError(ctx, "", fmt.Errorf("resolving amount_in asset: %w", err))
	}
	return asset, nil
}
