package payment

import "math"

// TaxRate is the GST rate applied on course prices.
const TaxRate = 0.18

// Tax returns the tax amount for a base price.
func Tax(price int) float64 {
	return TaxRate * float64(price)
}

// ComputeTotal returns the amount payable for a course: base price plus
// tax, reduced by the course's percentage offer. Totals stay as float64
// throughout the service; integer rounding happens only when converting
// to paise for the gateway.
func ComputeTotal(price int, offer float64) float64 {
	gross := float64(price) + Tax(price)
	return gross * (1 - offer/100)
}

// ApplyDiscount subtracts a flat coupon discount from a total, clamping
// at zero.
func ApplyDiscount(total, discount float64) float64 {
	if discount >= total {
		return 0
	}
	return total - discount
}

// PaiseAmount converts a rupee total to integer paise for the gateway,
// rounding half away from zero.
func PaiseAmount(total float64) int64 {
	return int64(math.Round(total * 100))
}
