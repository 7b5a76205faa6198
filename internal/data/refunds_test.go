package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Refunds_UpsertPayment(t *testing.T) {
	t.Run("appends to a nil aggregate", func(t *testing.T) {
		var refunds *Refunds

		updated := refunds.UpsertPayment(RefundPayment{ID: "refund-1", Amount: "10", Fee: "1"})

		require.NotNil(t, updated)
		require.Len(t, updated.Payments, 1)
		assert.Equal(t, "refund-1", updated.Payments[0].ID)
	})

	t.Run("replaces the payment with the same id in place", func(t *testing.T) {
		refunds := &Refunds{Payments: []RefundPayment{
			{ID: "refund-1", Amount: "10", Fee: "1"},
			{ID: "refund-2", Amount: "20", Fee: "2"},
		}}

		updated := refunds.UpsertPayment(RefundPayment{ID: "refund-1", Amount: "15", Fee: "1"})

		require.Len(t, updated.Payments, 2)
		assert.Equal(t, "refund-1", updated.Payments[0].ID)
		assert.Equal(t, "15", updated.Payments[0].Amount)
		assert.Equal(t, "refund-2", updated.Payments[1].ID)
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		refunds := &Refunds{Payments: []RefundPayment{{ID: "refund-1", Amount: "10", Fee: "1"}}}

		_ = refunds.UpsertPayment(RefundPayment{ID: "refund-1", Amount: "99", Fee: "0"})

		assert.Equal(t, "10", refunds.Payments[0].Amount)
	})
}

func Test_Refunds_TotalRefunded(t *testing.T) {
	t.Run("nil aggregate totals zero", func(t *testing.T) {
		var refunds *Refunds

		total, err := refunds.TotalRefunded(2)

		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("sums amount plus fee across payments", func(t *testing.T) {
		refunds := &Refunds{Payments: []RefundPayment{
			{ID: "refund-1", Amount: "10.50", Fee: "0.50"},
			{ID: "refund-2", Amount: "20", Fee: "1"},
		}}

		total, err := refunds.TotalRefunded(2)

		require.NoError(t, err)
		assert.Equal(t, "32", total.String())
	})

	t.Run("rounds half to even at the asset precision", func(t *testing.T) {
		refunds := &Refunds{Payments: []RefundPayment{
			{ID: "refund-1", Amount: "10.125", Fee: "0"},
		}}

		total, err := refunds.TotalRefunded(2)

		require.NoError(t, err)
		assert.Equal(t, "10.12", total.String())
	})

	t.Run("unparseable amount surfaces an error", func(t *testing.T) {
		refunds := &Refunds{Payments: []RefundPayment{{ID: "refund-1", Amount: "ten", Fee: "0"}}}

		_, err := refunds.TotalRefunded(2)

		assert.ErrorContains(t, err, `parsing refund payment "refund-1" amount`)
	})
}

func Test_Refunds_Recalculate(t *testing.T) {
	refunds := &Refunds{Payments: []RefundPayment{
		{ID: "refund-1", Amount: "40", Fee: "2"},
		{ID: "refund-2", Amount: "57", Fee: "1"},
	}}

	err := refunds.Recalculate(2)

	require.NoError(t, err)
	assert.Equal(t, "100", refunds.AmountRefunded)
	assert.Equal(t, "3", refunds.AmountFee)
}

func Test_Refunds_PaymentByID(t *testing.T) {
	refunds := &Refunds{Payments: []RefundPayment{{ID: "refund-1", Amount: "10", Fee: "1"}}}

	payment, found := refunds.PaymentByID("refund-1")
	require.True(t, found)
	assert.Equal(t, "10", payment.Amount)

	_, found = refunds.PaymentByID("refund-2")
	assert.False(t, found)

	var nilRefunds *Refunds
	_, found = nilRefunds.PaymentByID("refund-1")
	assert.False(t, found)
}

func Test_Refunds_ValueAndScan(t *testing.T) {
	refunds := &Refunds{
		AmountRefunded: "42",
		AmountFee:      "2",
		Payments:       []RefundPayment{{ID: "refund-1", Amount: "40", Fee: "2"}},
	}

	value, err := refunds.Value()
	require.NoError(t, err)

	var loaded Refunds
	require.NoError(t, loaded.Scan(value))
	assert.Equal(t, *refunds, loaded)

	var nilRefunds *Refunds
	value, err = nilRefunds.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}
