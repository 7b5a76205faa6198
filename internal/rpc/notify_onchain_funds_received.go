package rpc

import (
	"context"
	"time"

	"github.com/stellar/go/support/log"

	"github.com/stellar/anchor-platform-backend/internal/data"
	"github.com/stellar/anchor-platform-backend/internal/stellar"
)

// notifyOnchainFundsReceivedHandler confirms that the user's Stellar payment
// for a deposit arrived in the anchor's account. It records the transaction
// hash, optionally updates the amounts, and stamps transfer_received_at from
// the ledger close time.
type notifyOnchainFundsReceivedHandler struct {
	validator      *amountValidator
	horizonService stellar.HorizonService
}

func (h *notifyOnchainFundsReceivedHandler) ActionType() ActionMethod {
	return NotifyOnchainFundsReceived
}

func (h *notifyOnchainFundsReceivedHandler) SupportedProtocols() []data.Protocol {
	return []data.Protocol{data.ProtocolSEP24}
}

func (h *notifyOnchainFundsReceivedHandler) SupportedStatuses(txn *data.Transaction) []data.SepTransactionStatus {
	if txn.Kind != data.KindDeposit {
		return nil
	}
	statuses := []data.SepTransactionStatus{data.StatusPendingUserTransferStart}
	// A transaction parked in pending_external can still report late funds,
	// but only once.
	if txn.TransferReceivedAt == nil {
		statuses = append(statuses, data.StatusPendingExternal)
	}
	return statuses
}

func (h *notifyOnchainFundsReceivedHandler) NewRequest() ActionRequest {
	return &NotifyOnchainFundsReceivedRequest{}
}

func (h *notifyOnchainFundsReceivedHandler) Validate(ctx context.Context, txn *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyOnchainFundsReceivedRequest)

	provided := 0
	for _, amount := range []*AmountAssetRequest{req.AmountIn, req.AmountOut, req.AmountFee} {
		if amount != nil {
			provided++
		}
	}
	if provided != 0 && provided != 3 {
		return InvalidParams("All or none of the amount_in, amount_out, and amount_fee should be set")
	}

	if _, err := h.validator.ValidateAmountAsset(ctx, "amount_in", req.AmountIn, false); err != nil {
		return err
	}
	if _, err := h.validator.ValidateAmountAsset(ctx, "amount_out", req.AmountOut, false); err != nil {
		return err
	}
	if _, err := h.validator.ValidateAmountAsset(ctx, "amount_fee", req.AmountFee, true); err != nil {
		return err
	}

	if txn.StellarTransactionID == nil && req.StellarTransactionID == "" {
		return InvalidParams("stellar_transaction_id is required")
	}
	return nil
}

func (h *notifyOnchainFundsReceivedHandler) NextStatus(_ context.Context, _ *data.Transaction, _ ActionRequest) (data.SepTransactionStatus, error) {
	return data.StatusPendingAnchor, nil
}

func (h *notifyOnchainFundsReceivedHandler) Mutate(ctx context.Context, txn *data.Transaction, rawReq ActionRequest) error {
	req := rawReq.(*NotifyOnchainFundsReceivedRequest)

	if req.StellarTransactionID != "" {
		txn.StellarTransactionID = &req.StellarTransactionID
	}
	if req.AmountIn != nil {
		txn.AmountIn = &req.AmountIn.Amount
		txn.AmountInAsset = &req.AmountIn.Asset
		txn.AmountOut = &req.AmountOut.Amount
		txn.AmountOutAsset = &req.AmountOut.Asset
		txn.AmountFee = &req.AmountFee.Amount
		txn.AmountFeeAsset = &req.AmountFee.Asset
	}

	if txn.TransferReceivedAt == nil {
		txn.TransferReceivedAt = h.resolveTransferReceivedAt(ctx, *txn.StellarTransactionID)
	}
	return nil
}

// resolveTransferReceivedAt prefers the ledger close time of the on-chain
// payment and degrades to the wall clock when Horizon cannot answer.
func (h *notifyOnchainFundsReceivedHandler) resolveTransferReceivedAt(ctx context.Context, stellarTransactionID string) *time.Time {
	if h.horizonService != nil {
		closeTime, err := h.horizonService.GetTransactionCloseTime(ctx, stellarTransactionID)
		if err == nil {
			return &closeTime
		}
		log.Ctx(ctx).Warnf("falling back to current time for transfer_received_at: %v", err)
	}
	now := time.Now().UTC()
	return &now
}
