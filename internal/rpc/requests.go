package rpc

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// AmountAssetRequest is a monetary value together with the asset it is
// denominated in, both as strings in the SEP-38 asset identification format.
type AmountAssetRequest struct {
	Amount string `json:"amount"`
	Asset  string `json:"asset"`
}

// RefundRequest describes one refund payment. Amounts are denominated in the
// transaction's amount_in asset.
type RefundRequest struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	AmountFee string `json:"amount_fee"`
}

// ActionRequest is implemented by every action request payload. Validate
// performs structural validation only (presence, formats); domain validation
// belongs to the handlers.
type ActionRequest interface {
	GetTransactionID() string
	GetMessage() string
	Validate() error
}

// TransactionRequest carries the fields every action request has.
type TransactionRequest struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message,omitempty"`
}

func (r TransactionRequest) GetTransactionID() string {
	return r.TransactionID
}

func (r TransactionRequest) GetMessage() string {
	return r.Message
}

func (r TransactionRequest) Validate() error {
	if strings.TrimSpace(r.TransactionID) == "" {
		return InvalidParams("transaction_id is required")
	}
	return nil
}

const stellarTransactionIDLength = 64

func validateStellarTransactionID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) != stellarTransactionIDLength || !govalidator.IsHexadecimal(id) {
		return InvalidParams("stellar_transaction_id is not a valid transaction hash")
	}
	return nil
}

func validateRefundShape(refund *RefundRequest) error {
	if refund == nil {
		return nil
	}
	if strings.TrimSpace(refund.ID) == "" {
		return InvalidParams("refund.id is required")
	}
	if refund.Amount == "" {
		return InvalidParams("refund.amount is required")
	}
	if refund.AmountFee == "" {
		return InvalidParams("refund.amount_fee is required")
	}
	return nil
}

type NotifyOnchainFundsReceivedRequest struct {
	TransactionRequest
	StellarTransactionID string              `json:"stellar_transaction_id,omitempty"`
	AmountIn             *AmountAssetRequest `json:"amount_in,omitempty"`
	AmountOut            *AmountAssetRequest `json:"amount_out,omitempty"`
	AmountFee            *AmountAssetRequest `json:"amount_fee,omitempty"`
}

func (r NotifyOnchainFundsReceivedRequest) Validate() error {
	if err := r.TransactionRequest.Validate(); err != nil {
		return err
	}
	return validateStellarTransactionID(r.StellarTransactionID)
}

type NotifyRefundInitiatedRequest struct {
	TransactionRequest
	Refund *RefundRequest `json:"refund,omitempty"`
}

func (r NotifyRefundInitiatedRequest) Validate() error {
	if err := r.TransactionRequest.Validate(); err != nil {
		return err
	}
	return validateRefundShape(r.Refund)
}

type NotifyRefundSentRequest struct {
	TransactionRequest
	Refund *RefundRequest `json:"refund,omitempty"`
}

func (r NotifyRefundSentRequest) Validate() error {
	if err := r.TransactionRequest.Validate(); err != nil {
		return err
	}
	return validateRefundShape(r.Refund)
}

type NotifyTransactionExpiredRequest struct {
	TransactionRequest
}

func (r NotifyTransactionExpiredRequest) Validate() error {
	if err := r.TransactionRequest.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Message) == "" {
		return InvalidParams("message is required")
	}
	return nil
}

type NotifyTransactionErrorRequest struct {
	TransactionRequest
}

func (r NotifyTransactionErrorRequest) Validate() error {
	if err := r.TransactionRequest.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Message) == "" {
		return InvalidParams("message is required")
	}
	return nil
}

type NotifyInteractiveFlowCompletedRequest struct {
	TransactionRequest
	AmountIn       *AmountAssetRequest `json:"amount_in,omitempty"`
	AmountOut      *AmountAssetRequest `json:"amount_out,omitempty"`
	AmountFee      *AmountAssetRequest `json:"amount_fee,omitempty"`
	AmountExpected string              `json:"amount_expected,omitempty"`
}

func (r NotifyInteractiveFlowCompletedRequest) Validate() error {
	if err := r.TransactionRequest.Validate(); err != nil {
		return err
	}
	if r.AmountIn == nil {
		return InvalidParams("amount_in is required")
	}
	if r.AmountOut == nil {
		return InvalidParams("amount_out is required")
	}
	if r.AmountFee == nil {
		return InvalidParams("amount_fee is required")
	}
	return nil
}
