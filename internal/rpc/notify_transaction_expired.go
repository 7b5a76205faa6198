package rpc

import (
	"context"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

// notifyTransactionExpiredHandler closes a transaction the user abandoned.
// Expired is terminal; the required message explains what timed out.
type notifyTransactionExpiredHandler struct{}

func (h *notifyTransactionExpiredHandler) ActionType() ActionMethod {
	return NotifyTransactionExpired
}

func (h *notifyTransactionExpiredHandler) SupportedProtocols() []data.Protocol {
	return []data.Protocol{data.ProtocolSEP24, data.ProtocolSEP31}
}

func (h *notifyTransactionExpiredHandler) SupportedStatuses(_ *data.Transaction) []data.SepTransactionStatus {
	return nonTerminalStatuses()
}

func (h *notifyTransactionExpiredHandler) NewRequest() ActionRequest {
	return &NotifyTransactionExpiredRequest{}
}

func (h *notifyTransactionExpiredHandler) Validate(_ context.Context, _ *data.Transaction, _ ActionRequest) error {
	return nil
}

func (h *notifyTransactionExpiredHandler) NextStatus(_ context.Context, _ *data.Transaction, _ ActionRequest) (data.SepTransactionStatus, error) {
	return data.StatusExpired, nil
}

func (h *notifyTransactionExpiredHandler) Mutate(_ context.Context, _ *data.Transaction, _ ActionRequest) error {
	return nil
}

func nonTerminalStatuses() []data.SepTransactionStatus {
	statuses := make([]data.SepTransactionStatus, 0, len(data.SepTransactionStatuses()))
	for _, s := range data.SepTransactionStatuses() {
		if !s.IsTerminal() {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
