package service

import (
	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"

	"github.com/shopspring/decimal"
)

// moneyTolerance absorbs rounding when comparing payment sums with totals.
var moneyTolerance = decimal.RequireFromString("0.01")

// ValidatePayments checks that every payment amount is positive and that the
// amounts add up to total within one cent. It performs no I/O.
func ValidatePayments(payments []dto.PaymentRequest, total decimal.Decimal) error {
	if len(payments) == 0 {
		return apierror.ErrPaymentsRequired
	}
	sum := decimal.Zero
	for i, p := range payments {
		if !p.Amount.IsPositive() {
			return apierror.Wrap(apierror.ErrInvalidAmount, "payment %d: amount must be greater than zero", i+1)
		}
		sum = sum.Add(p.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(moneyTolerance) {
		return apierror.Wrap(apierror.ErrPaymentMismatch,
			"payments total %s does not match transaction total %s", sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}
