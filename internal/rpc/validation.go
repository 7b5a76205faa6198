package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stellar/anchor-platform-backend/internal/data"
	"github.com/stellar/anchor-platform-backend/internal/services"
)

// amountValidator implements the monetary validation rules shared by all
// handlers: amounts must parse as finite decimals, respect the asset's
// significant decimals, and be strictly positive (or non-negative for fees).
type amountValidator struct {
	assetService services.AssetService
}

// ValidateAmountAsset range-checks the amount and resolves the asset in the
// catalog, returning the resolved asset so callers can reuse its precision.
// feeSemantics relaxes the positivity rule to non-negativity.
func (v *amountValidator) ValidateAmountAsset(ctx context.Context, field string, req *AmountAssetRequest, feeSemantics bool) (*data.Asset, error) {
	if req == nil {
		return nil, nil
	}
	return v.validate(ctx, field+".amount", field+".asset", req.Amount, req.Asset, feeSemantics)
}

// ValidateAmount validates a bare amount denominated in the given asset
// identifier (used for refund amounts, which are always in amount_in_asset).
func (v *amountValidator) ValidateAmount(ctx context.Context, amountLabel, amount, assetIdentifier string, feeSemantics bool) (*data.Asset, error) {
	return v.validate(ctx, amountLabel, "amount_in.asset", amount, assetIdentifier, feeSemantics)
}

func (v *amountValidator) validate(ctx context.Context, amountLabel, assetLabel, amount, assetIdentifier string, feeSemantics bool) (*data.Asset, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, BadRequest(fmt.Sprintf("%s is not a valid number", amountLabel))
	}

	if feeSemantics {
		if value.IsNegative() {
			return nil, BadRequest(fmt.Sprintf("%s should be non-negative", amountLabel))
		}
	} else if !value.IsPositive() {
		return nil, BadRequest(fmt.Sprintf("%s should be positive", amountLabel))
	}

	asset, err := v.assetService.GetAssetByIdentifier(ctx, assetIdentifier)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return nil, BadRequest(fmt.Sprintf("%s is not supported", assetLabel))
		}
		return nil, InternalError(ctx, "", fmt.Errorf("resolving asset for %s: %w", assetLabel, err))
	}

	if fractionalDigits(value) > asset.SignificantDecimals {
		return nil, BadRequest(fmt.Sprintf("%s exceeds the significant decimals of the asset", amountLabel))
	}

	return asset, nil
}

// fractionalDigits returns the number of decimal places the value carries.
func fractionalDigits(value decimal.Decimal) int32 {
	if value.Exponent() >= 0 {
		return 0
	}
	return -value.Exponent()
}

// validateRefundAmounts validates the refund principal (positive) and fee
// (non-negative) against the transaction's amount_in asset and returns the
// resolved asset.
func (v *amountValidator) validateRefundAmounts(ctx context.Context, refund *RefundRequest, txn *data.Transaction) (*data.Asset, error) {
	if txn.AmountInAsset == nil {
		return nil, InvalidParams("amount_in_asset is not set on the transaction")
	}
	asset, err := v.ValidateAmount(ctx, "refund.amount", refund.Amount, *txn.AmountInAsset, false)
	if err != nil {
		return nil, err
	}
	if _, err = v.ValidateAmount(ctx, "refund.amount_fee", refund.AmountFee, *txn.AmountInAsset, true); err != nil {
		return nil, err
	}
	return asset, nil
}

// amountInDecimal parses the transaction's amount_in.
func amountInDecimal(txn *data.Transaction) (decimal.Decimal, error) {
	if txn.AmountIn == nil {
		return decimal.Zero, InvalidParams("amount_in is not set on the transaction")
	}
	value, err := decimal.NewFromString(*txn.AmountIn)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount_in %q: %w", *txn.AmountIn, err)
	}
	return value, nil
}

// refundTotal is amount+fee of a refund request.
func refundTotal(refund *RefundRequest) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(refund.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing refund amount %q: %w", refund.Amount, err)
	}
	fee, err := decimal.NewFromString(refund.AmountFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing refund fee %q: %w", refund.AmountFee, err)
	}
	return amount.Add(fee), nil
}
