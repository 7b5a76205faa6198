package data

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// RefundPayment is a single refund payment attached to a transaction, split
// into the refunded principal and the fee charged for the refund.
type RefundPayment struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Fee    string `json:"fee"`
}

// Total returns amount+fee of the payment.
func (p RefundPayment) Total() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing refund payment %q amount: %w", p.ID, err)
	}
	fee, err := decimal.NewFromString(p.Fee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing refund payment %q fee: %w", p.ID, err)
	}
	return amount.Add(fee), nil
}

// Refunds is the refund aggregate of a transaction: the ordered refund
// payments plus the derived totals. It is persisted as a JSONB column.
type Refunds struct {
	AmountRefunded string          `json:"amount_refunded"`
	AmountFee      string          `json:"amount_fee"`
	Payments       []RefundPayment `json:"payments"`
}

func (r *Refunds) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	value, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshalling refunds: %w", err)
	}
	return value, nil
}

func (r *Refunds) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan type %T into Refunds", src)
	}
	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("unmarshalling refunds: %w", err)
	}
	return nil
}

// HasPayments reports whether the aggregate carries at least one payment.
// It is safe on a nil receiver.
func (r *Refunds) HasPayments() bool {
	return r != nil && len(r.Payments) > 0
}

// PaymentByID returns the payment with the given id, if present.
func (r *Refunds) PaymentByID(id string) (RefundPayment, bool) {
	if r == nil {
		return RefundPayment{}, false
	}
	for _, p := range r.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return RefundPayment{}, false
}

// UpsertPayment returns a fresh aggregate where the payment with the same id
// is replaced in place, or the payment is appended when the id is new.
// Insertion order is preserved and the receiver is never mutated.
func (r *Refunds) UpsertPayment(payment RefundPayment) *Refunds {
	updated := &Refunds{}
	replaced := false
	if r != nil {
		updated.AmountRefunded = r.AmountRefunded
		updated.AmountFee = r.AmountFee
		updated.Payments = make([]RefundPayment, 0, len(r.Payments)+1)
		for _, p := range r.Payments {
			if p.ID == payment.ID {
				updated.Payments = append(updated.Payments, payment)
				replaced = true
			} else {
				updated.Payments = append(updated.Payments, p)
			}
		}
	}
	if !replaced {
		updated.Payments = append(updated.Payments, payment)
	}
	return updated
}

// TotalRefunded sums amount+fee across all payments, rounded to the asset
// precision with banker's rounding.
func (r *Refunds) TotalRefunded(assetPrecision int32) (decimal.Decimal, error) {
	total := decimal.Zero
	if r == nil {
		return total, nil
	}
	for _, p := range r.Payments {
		paymentTotal, err := p.Total()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(paymentTotal)
	}
	return total.RoundBank(assetPrecision), nil
}

// Recalculate recomputes the derived amount_refunded and amount_fee fields
// from the payments, rounded to the asset precision with banker's rounding.
// It must be called after every mutation of the payments.
func (r *Refunds) Recalculate(assetPrecision int32) error {
	if r == nil {
		return nil
	}

	totalRefunded, err := r.TotalRefunded(assetPrecision)
	if err != nil {
		return err
	}

	totalFee := decimal.Zero
	for _, p := range r.Payments {
		fee, err := decimal.NewFromString(p.Fee)
		if err != nil {
			return fmt.Errorf("parsing refund payment %q fee: %w", p.ID, err)
		}
		totalFee = totalFee.Add(fee)
	}

	r.AmountRefunded = totalRefunded.String()
	r.AmountFee = totalFee.RoundBank(assetPrecision).String()
	return nil
}
