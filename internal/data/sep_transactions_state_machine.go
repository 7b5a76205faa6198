package data

import (
	"fmt"
	"slices"
	"strings"
)

// Protocol identifies the SEP family a transaction belongs to.
type Protocol string

const (
	ProtocolSEP24 Protocol = "24"
	ProtocolSEP31 Protocol = "31"
)

func (p Protocol) Validate() error {
	switch p {
	case ProtocolSEP24, ProtocolSEP31:
		return nil
	default:
		return fmt.Errorf("invalid protocol: %s", p)
	}
}

// TransactionKind is the direction and SEP family of a transaction.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindReceive    TransactionKind = "receive"
)

// Validate checks the kind is legal for the given protocol: deposit/withdrawal
// belong to SEP-24 and receive belongs to SEP-31.
func (k TransactionKind) Validate(protocol Protocol) error {
	switch protocol {
	case ProtocolSEP24:
		if k == KindDeposit || k == KindWithdrawal {
			return nil
		}
	case ProtocolSEP31:
		if k == KindReceive {
			return nil
		}
	}
	return fmt.Errorf("invalid kind %q for protocol %q", k, protocol)
}

type SepTransactionStatus string

const (
	StatusIncomplete                  SepTransactionStatus = "incomplete"
	StatusPendingUserTransferStart    SepTransactionStatus = "pending_user_transfer_start"
	StatusPendingUserTransferComplete SepTransactionStatus = "pending_user_transfer_complete"
	StatusPendingExternal             SepTransactionStatus = "pending_external"
	StatusPendingAnchor               SepTransactionStatus = "pending_anchor"
	StatusPendingStellar              SepTransactionStatus = "pending_stellar"
	StatusPendingReceiver             SepTransactionStatus = "pending_receiver"
	StatusPendingCustomerInfoUpdate   SepTransactionStatus = "pending_customer_info_update"
	StatusPendingTrust                SepTransactionStatus = "pending_trust"
	StatusCompleted                   SepTransactionStatus = "completed"
	StatusRefunded                    SepTransactionStatus = "refunded"
	StatusExpired                     SepTransactionStatus = "expired"
	StatusError                       SepTransactionStatus = "error"
)

// SepTransactionStatuses returns all statuses of the closed set.
func SepTransactionStatuses() []SepTransactionStatus {
	return []SepTransactionStatus{
		StatusIncomplete, StatusPendingUserTransferStart, StatusPendingUserTransferComplete,
		StatusPendingExternal, StatusPendingAnchor, StatusPendingStellar, StatusPendingReceiver,
		StatusPendingCustomerInfoUpdate, StatusPendingTrust, StatusCompleted, StatusRefunded,
		StatusExpired, StatusError,
	}
}

// Validate validates the SEP transaction status.
func (status SepTransactionStatus) Validate() error {
	for _, s := range SepTransactionStatuses() {
		if SepTransactionStatus(strings.ToLower(string(status))) == s {
			return nil
		}
	}
	return fmt.Errorf("invalid SEP transaction status: %s", status)
}

// IsTerminal reports whether no further transitions are permitted from the status.
func (status SepTransactionStatus) IsTerminal() bool {
	switch status {
	case StatusCompleted, StatusRefunded, StatusExpired, StatusError:
		return true
	default:
		return false
	}
}

// transitionTable returns the permitted status edges: the transitions the
// action handlers may produce, plus the expiration/error edges available
// from every non-terminal status.
func transitionTable() map[SepTransactionStatus][]SepTransactionStatus {
	table := map[SepTransactionStatus][]SepTransactionStatus{
		StatusIncomplete:               {StatusPendingAnchor},                                        // interactive flow completed
		StatusPendingUserTransferStart: {StatusPendingAnchor},                                        // on-chain funds received
		StatusPendingExternal:          {StatusPendingAnchor, StatusRefunded},                        // on-chain funds received / refund sent
		StatusPendingAnchor:            {StatusPendingExternal, StatusPendingAnchor, StatusRefunded}, // refund initiated / refund sent
		StatusPendingStellar:           {StatusPendingAnchor, StatusRefunded},                        // refund sent
		StatusPendingReceiver:          {StatusPendingAnchor, StatusRefunded},                        // refund sent
	}

	for _, s := range SepTransactionStatuses() {
		if !s.IsTerminal() {
			table[s] = append(table[s], StatusExpired, StatusError)
		}
	}
	return table
}

// CanTransitionTo reports whether the edge from the status to the target is
// in the transition table.
func (status SepTransactionStatus) CanTransitionTo(target SepTransactionStatus) bool {
	return slices.Contains(transitionTable()[status], target)
}

// TransitionTo validates the transition from the status to the target.
func (status SepTransactionStatus) TransitionTo(target SepTransactionStatus) error {
	if !status.CanTransitionTo(target) {
		return fmt.Errorf("cannot transition from %s to %s", status, target)
	}
	return nil
}

// SourceStatuses returns the statuses the given target status can be reached from.
func (status SepTransactionStatus) SourceStatuses() []SepTransactionStatus {
	var sources []SepTransactionStatus
	for _, from := range SepTransactionStatuses() {
		if from.CanTransitionTo(status) {
			sources = append(sources, from)
		}
	}
	return sources
}

// ToSepTransactionStatus converts a string to a SepTransactionStatus.
func ToSepTransactionStatus(s string) (SepTransactionStatus, error) {
	err := SepTransactionStatus(s).Validate()
	if err != nil {
		return "", err
	}
	return SepTransactionStatus(strings.ToLower(s)), nil
}
