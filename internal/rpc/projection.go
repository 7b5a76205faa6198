package rpc

import (
	"time"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

// Amount is a monetary value paired with its asset in the public projection.
type Amount struct {
	Amount string `json:"amount,omitempty"`
	Asset  string `json:"asset,omitempty"`
}

type RefundPaymentResponse struct {
	ID     string `json:"id"`
	Amount Amount `json:"amount"`
	Fee    Amount `json:"fee"`
}

type RefundsResponse struct {
	AmountRefunded Amount                  `json:"amount_refunded"`
	AmountFee      Amount                  `json:"amount_fee"`
	Payments       []RefundPaymentResponse `json:"payments"`
}

// GetTransactionResponse is the stable public projection of a transaction.
// Null scalars are omitted, except amount_expected which is always present
// to preserve the asset hint of the originally requested asset.
type GetTransactionResponse struct {
	ID                   string           `json:"id"`
	SEP                  string           `json:"sep"`
	Kind                 string           `json:"kind"`
	Status               string           `json:"status"`
	AmountExpected       *Amount          `json:"amount_expected"`
	AmountIn             *Amount          `json:"amount_in,omitempty"`
	AmountOut            *Amount          `json:"amount_out,omitempty"`
	AmountFee            *Amount          `json:"amount_fee,omitempty"`
	StellarTransactionID string           `json:"stellar_transaction_id,omitempty"`
	Message              string           `json:"message,omitempty"`
	Refunds              *RefundsResponse `json:"refunds,omitempty"`
	StartedAt            *time.Time       `json:"started_at,omitempty"`
	UpdatedAt            *time.Time       `json:"updated_at,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	TransferReceivedAt   *time.Time       `json:"transfer_received_at,omitempty"`
}

func projectAmount(amount, asset *string) *Amount {
	if amount == nil {
		return nil
	}
	result := &Amount{Amount: *amount}
	if asset != nil {
		result.Asset = *asset
	}
	return result
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewGetTransactionResponse maps the internal transaction to its public projection.
func NewGetTransactionResponse(txn *data.Transaction) *GetTransactionResponse {
	resp := &GetTransactionResponse{
		ID:                   txn.ID,
		SEP:                  string(txn.Protocol),
		Kind:                 string(txn.Kind),
		Status:               string(txn.Status),
		AmountIn:             projectAmount(txn.AmountIn, txn.AmountInAsset),
		AmountOut:            projectAmount(txn.AmountOut, txn.AmountOutAsset),
		AmountFee:            projectAmount(txn.AmountFee, txn.AmountFeeAsset),
		StellarTransactionID: deref(txn.StellarTransactionID),
		Message:              deref(txn.Message),
		TransferReceivedAt:   txn.TransferReceivedAt,
		CompletedAt:          txn.CompletedAt,
	}

	// amount_expected keeps the requested asset code even when the amount is
	// still unknown.
	amountExpected := &Amount{Asset: deref(txn.RequestAssetCode)}
	if txn.AmountExpected != nil {
		amountExpected.Amount = *txn.AmountExpected
	}
	resp.AmountExpected = amountExpected

	if !txn.StartedAt.IsZero() {
		startedAt := txn.StartedAt
		resp.StartedAt = &startedAt
	}
	if !txn.UpdatedAt.IsZero() {
		updatedAt := txn.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	if txn.Refunds != nil {
		refundAsset := deref(txn.AmountInAsset)
		refunds := &RefundsResponse{
			AmountRefunded: Amount{Amount: txn.Refunds.AmountRefunded, Asset: refundAsset},
			AmountFee:      Amount{Amount: txn.Refunds.AmountFee, Asset: refundAsset},
			Payments:       make([]RefundPaymentResponse, 0, len(txn.Refunds.Payments)),
		}
		for _, p := range txn.Refunds.Payments {
			refunds.Payments = append(refunds.Payments, RefundPaymentResponse{
				ID:     p.ID,
				Amount: Amount{Amount: p.Amount, Asset: refundAsset},
				Fee:    Amount{Amount: p.Fee, Asset: refundAsset},
			})
		}
		resp.Refunds = refunds
	}

	return resp
}
