package rpc

import (
	"context"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

// notifyInteractiveFlowCompletedHandler moves an interactive transaction out
// of incomplete once the user finished the interactive flow and the amounts
// were agreed on.
type notifyInteractiveFlowCompletedHandler struct {
	validator *amountValidator
}

func (h *notifyInteractiveFlowCompletedHandler) ActionType() ActionMethod {
	return NotifyInteractiveFlowCompleted
}

func (h *notifyInteractiveFlowCompletedHandler) SupportedProtocols() []data.Protocol {
	return []data.Protocol{data.ProtocolSEP24}
}

func (h *notifyInteractiveFlowCompletedHandler) SupportedStatuses(_ *data.Transaction) []data.SepTransactionStatus {
	return []data.SepTransactionStatus{data.StatusIncomplete}
}

func (h *notifyInteractiveFlowCompletedHandler) NewRequest() ActionRequest {
	return &NotifyInteractiveFlowCompletedRequest{}
}

func (h *notifyInteractiveFlowCompletedHandler) Validate(ctx context.Context, _ *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyInteractiveFlowCompletedRequest)

	if _, err := h.validator.ValidateAmountAsset(ctx, "amount_in", req.AmountIn, false); err != nil {
		return err
	}
	if _, err := h.validator.ValidateAmountAsset(ctx, "amount_out", req.AmountOut, false); err != nil {
		return err
	}
	if _, err := h.validator.ValidateAmountAsset(ctx, "amount_fee", req.AmountFee, true); err != nil {
		return err
	}
	if req.AmountExpected != "" {
		if _, err := h.validator.ValidateAmount(ctx, "amount_expected", req.AmountExpected, req.AmountIn.Asset, false); err != nil {
			return err
		}
	}
	return nil
}

func (h *notifyInteractiveFlowCompletedHandler) NextStatus(_ context.Context, _ *data.Transaction, _ ActionRequest) (data.SepTransactionStatus, error) {
	return data.StatusPendingAnchor, nil
}

func (h *notifyInteractiveFlowCompletedHandler) Mutate(_ context.Context, txn *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyInteractiveFlowCompletedRequest)

	txn.AmountIn = &req.AmountIn.Amount
	txn.AmountInAsset = &req.AmountIn.Asset
	txn.AmountOut = &req.AmountOut.Amount
	txn.AmountOutAsset = &req.AmountOut.Asset
	txn.AmountFee = &req.AmountFee.Amount
	txn.AmountFeeAsset = &req.AmountFee.Asset

	// amount_expected defaults to the agreed amount_in when the business
	// server does not override it.
	if req.AmountExpected != "" {
		txn.AmountExpected = &req.AmountExpected
	} else {
		txn.AmountExpected = &req.AmountIn.Amount
	}
	return nil
}
