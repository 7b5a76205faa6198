package rpc

import "fmt"

// ActionMethod is the closed set of operator-invocable actions.
type ActionMethod string

const (
	NotifyInteractiveFlowCompleted ActionMethod = "notify_interactive_flow_completed"
	NotifyOnchainFundsReceived     ActionMethod = "notify_onchain_funds_received"
	NotifyRefundInitiated          ActionMethod = "notify_refund_initiated"
	NotifyRefundSent               ActionMethod = "notify_refund_sent"
	NotifyTransactionExpired       ActionMethod = "notify_transaction_expired"
	NotifyTransactionError         ActionMethod = "notify_transaction_error"
)

func ActionMethods() []ActionMethod {
	return []ActionMethod{
		NotifyInteractiveFlowCompleted,
		NotifyOnchainFundsReceived,
		NotifyRefundInitiated,
		NotifyRefundSent,
		NotifyTransactionExpired,
		NotifyTransactionError,
	}
}

func (m ActionMethod) Validate() error {
	for _, known := range ActionMethods() {
		if m == known {
			return nil
		}
	}
	return fmt.Errorf("unknown action method %q", m)
}
