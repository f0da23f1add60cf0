// Package billing computes payment figures for lab requests. All derived
// amounts are recomputed server-side; client-supplied netPayable and
// balanceDue are never trusted.
package billing

import (
	"math"

	"github.com/medilab/lims/internal/domain/catalog"
)

// PaymentDetails mirrors the payment JSON stored on a lab request. Field
// names match the wire format used by the intake UI.
type PaymentDetails struct {
	TotalAmount     float64 `json:"totalAmount"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	PaidAmount      float64 `json:"paidAmount"`
	NetPayable      float64 `json:"netPayable"`
	BalanceDue      float64 `json:"balanceDue"`
}

// ComputeTotal sums the catalog prices of the selected tests.
func ComputeTotal(tests []*catalog.LabTest) float64 {
	var total float64
	for _, t := range tests {
		total += t.Price
	}
	return total
}

// Derive computes netPayable and balanceDue from the base figures, clamping
// both at zero.
func Derive(total, discount, paid float64) (netPayable, balanceDue float64) {
	netPayable = math.Max(0, total-discount)
	balanceDue = math.Max(0, netPayable-paid)
	return netPayable, balanceDue
}

// PercentFromAmount converts a discount amount to a percentage of total.
// A zero total yields zero.
func PercentFromAmount(total, amount float64) float64 {
	if total <= 0 {
		return 0
	}
	return amount / total * 100
}

// AmountFromPercent converts a discount percentage to a rounded amount.
func AmountFromPercent(total, percent float64) float64 {
	return math.Round(total * percent / 100)
}

// Recalculate normalizes a PaymentDetails in place: recomputes netPayable
// and balanceDue from total/discount/paid and fills discountPercent when
// the caller left it unset.
func Recalculate(p *PaymentDetails) {
	p.NetPayable, p.BalanceDue = Derive(p.TotalAmount, p.DiscountAmount, p.PaidAmount)
	if p.DiscountPercent == 0 && p.DiscountAmount > 0 {
		p.DiscountPercent = PercentFromAmount(p.TotalAmount, p.DiscountAmount)
	}
}
