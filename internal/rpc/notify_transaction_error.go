package rpc

import (
	"context"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

// notifyTransactionErrorHandler parks a transaction in the terminal error
// status after an unrecoverable failure on the anchor's side. The required
// message is surfaced to the wallet.
type notifyTransactionErrorHandler struct{}

func (h *notifyTransactionErrorHandler) ActionType() ActionMethod {
	return NotifyTransactionError
}

func (h *notifyTransactionErrorHandler) SupportedProtocols() []data.Protocol {
	return []data.Protocol{data.ProtocolSEP24, data.ProtocolSEP31}
}

func (h *notifyTransactionErrorHandler) SupportedStatuses(_ *data.Transaction) []data.SepTransactionStatus {
	return nonTerminalStatuses()
}

func (h *notifyTransactionErrorHandler) NewRequest() ActionRequest {
	return &NotifyTransactionErrorRequest{}
}

func (h *notifyTransactionErrorHandler) Validate(_ context.Context, _ *data.Transaction, _ ActionRequest) error {
	return nil
}

func (h *notifyTransactionErrorHandler) NextStatus(_ context.Context, _ *data.Transaction, _ ActionRequest) (data.SepTransactionStatus, error) {
	return data.StatusError, nil
}

func (h *notifyTransactionErrorHandler) Mutate(_ context.Context, _ *data.Transaction, _ ActionRequest) error {
	return nil
}
