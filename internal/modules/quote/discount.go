// README: Tiered long-rental discount and the integer rounding rule applied to it.
package quote

import (
	"errors"
	"fmt"
)

type Tier struct {
	MinDays int `json:"minDays"`
	Percent int `json:"percent"`
}

// DefaultTiers is the storefront's long-rental schedule.
var DefaultTiers = []Tier{
	{MinDays: 1, Percent: 0},
	{MinDays: 3, Percent: 5},
	{MinDays: 7, Percent: 10},
	{MinDays: 14, Percent: 15},
	{MinDays: 30, Percent: 20},
}

var ErrInvalidTiers = errors.New("invalid discount tiers")

// ValidateTiers requires strictly ascending MinDays, non-decreasing Percent and 0..100 percents.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: empty table", ErrInvalidTiers)
	}
	for i, t := range tiers {
		if t.Percent < 0 || t.Percent > 100 {
			return fmt.Errorf("%w: percent %d out of range", ErrInvalidTiers, t.Percent)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if t.MinDays <= prev.MinDays {
			return fmt.Errorf("%w: minDays %d not ascending", ErrInvalidTiers, t.MinDays)
		}
		if t.Percent < prev.Percent {
			return fmt.Errorf("%w: percent %d decreases", ErrInvalidTiers, t.Percent)
		}
	}
	return nil
}

// DiscountPercent picks the last tier whose MinDays <= days. Tiers must be ascending.
func DiscountPercent(days int, tiers []Tier) int {
	if days <= 0 {
		return 0
	}
	pct := 0
	for _, t := range tiers {
		if t.MinDays > days {
			break
		}
		pct = t.Percent
	}
	return pct
}

type Pricing struct {
	SubTotal       int64
	DiscountAmount int64
	VehicleNet     int64
}

// ApplyDiscount rounds the discount half-up in integer arithmetic, so 193.5 becomes 194.
// The discount never exceeds the subtotal and the net never goes negative.
func ApplyDiscount(pricePerDay int64, days, percent int) Pricing {
	if days < 0 {
		days = 0
	}
	sub := pricePerDay * int64(days)

	var discount int64
	if sub > 0 && percent > 0 {
		discount = divRoundHalfUp(sub*int64(percent), 100)
		discount = min(discount, sub)
	}
	return Pricing{
		SubTotal:       sub,
		DiscountAmount: discount,
		VehicleNet:     max(0, sub-discount),
	}
}

// ReportedPercent recovers a display percent from amounts, e.g. on the payment
// step where only the net total travels. A zero subtotal reports 0.
func ReportedPercent(subTotal, discountAmount int64) int {
	if subTotal <= 0 || discountAmount <= 0 {
		return 0
	}
	return int(divRoundHalfUp(discountAmount*100, subTotal))
}

// divRoundHalfUp assumes n >= 0 and d > 0.
func divRoundHalfUp(n, d int64) int64 {
	return (2*n + d) / (2 * d)
}
