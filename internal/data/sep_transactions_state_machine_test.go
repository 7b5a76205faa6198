package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TransactionKind_Validate(t *testing.T) {
	testCases := []struct {
		kind     TransactionKind
		protocol Protocol
		wantErr  bool
	}{
		{kind: KindDeposit, protocol: ProtocolSEP24, wantErr: false},
		{kind: KindWithdrawal, protocol: ProtocolSEP24, wantErr: false},
		{kind: KindReceive, protocol: ProtocolSEP31, wantErr: false},
		{kind: KindReceive, protocol: ProtocolSEP24, wantErr: true},
		{kind: KindDeposit, protocol: ProtocolSEP31, wantErr: true},
		{kind: TransactionKind("send"), protocol: ProtocolSEP31, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind)+"/"+string(tc.protocol), func(t *testing.T) {
			err := tc.kind.Validate(tc.protocol)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_SepTransactionStatus_IsTerminal(t *testing.T) {
	terminal := map[SepTransactionStatus]bool{
		StatusCompleted: true,
		StatusRefunded:  true,
		StatusExpired:   true,
		StatusError:     true,
	}

	for _, status := range SepTransactionStatuses() {
		assert.Equal(t, terminal[status], status.IsTerminal(), "status %s", status)
	}
}

func Test_SepTransactionStatus_TransitionTo(t *testing.T) {
	testCases := []struct {
		from    SepTransactionStatus
		to      SepTransactionStatus
		wantErr bool
	}{
		{from: StatusIncomplete, to: StatusPendingAnchor, wantErr: false},
		{from: StatusPendingUserTransferStart, to: StatusPendingAnchor, wantErr: false},
		{from: StatusPendingAnchor, to: StatusPendingExternal, wantErr: false},
		{from: StatusPendingAnchor, to: StatusPendingAnchor, wantErr: false},
		{from: StatusPendingAnchor, to: StatusRefunded, wantErr: false},
		{from: StatusPendingExternal, to: StatusRefunded, wantErr: false},
		{from: StatusPendingStellar, to: StatusPendingAnchor, wantErr: false},
		{from: StatusPendingReceiver, to: StatusRefunded, wantErr: false},
		{from: StatusIncomplete, to: StatusExpired, wantErr: false},
		{from: StatusPendingTrust, to: StatusError, wantErr: false},
		// terminal statuses are final
		{from: StatusCompleted, to: StatusPendingAnchor, wantErr: true},
		{from: StatusRefunded, to: StatusPendingAnchor, wantErr: true},
		{from: StatusExpired, to: StatusError, wantErr: true},
		{from: StatusError, to: StatusExpired, wantErr: true},
		// unrelated edges are rejected
		{from: StatusIncomplete, to: StatusRefunded, wantErr: true},
		{from: StatusPendingUserTransferStart, to: StatusPendingExternal, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, !tc.wantErr, tc.from.CanTransitionTo(tc.to))

			err := tc.from.TransitionTo(tc.to)
			if tc.wantErr {
				assert.ErrorContains(t, err, "cannot transition from")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_SepTransactionStatus_SourceStatuses(t *testing.T) {
	sources := StatusRefunded.SourceStatuses()

	assert.ElementsMatch(t, []SepTransactionStatus{
		StatusPendingAnchor, StatusPendingExternal, StatusPendingStellar, StatusPendingReceiver,
	}, sources)
}

func Test_ToSepTransactionStatus(t *testing.T) {
	status, err := ToSepTransactionStatus("PENDING_ANCHOR")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingAnchor, status)

	_, err = ToSepTransactionStatus("in_flight")
	assert.ErrorContains(t, err, "invalid SEP transaction status")
}
