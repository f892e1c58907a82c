// README: Payment-step summary rebuilt from an untrusted handoff.
package booking

import (
	"fmt"

	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
	"carrental/internal/types"
)

// PaymentSummary is what the payment step displays. Only Amount travelled
// with the handoff; the breakdown is recomputed from the catalog.
type PaymentSummary struct {
	Handoff         Handoff           `json:"handoff"`
	Vehicle         catalog.Vehicle   `json:"vehicle"`
	Addons          []quote.AddonLine `json:"addons"`
	AddonsTotal     int64             `json:"addonsTotal"`
	SubTotal        int64             `json:"subTotal"`
	VehicleNet      int64             `json:"vehicleNet"`
	DiscountAmount  int64             `json:"discountAmount"`
	DiscountPercent int               `json:"discountPercent"`
	Total           types.Money       `json:"total"`
	TotalText       string            `json:"totalText"`
	Methods         []PaymentMethod   `json:"methods"`
}

type summaryCatalog interface {
	Vehicle(id string) (catalog.Vehicle, error)
	Addons() []catalog.AddonDefinition
}

// Summarize returns catalog.ErrNotFound for an unknown car so callers can
// render a not-found state.
func Summarize(h Handoff, cat summaryCatalog) (PaymentSummary, error) {
	if h.CarID == "" {
		return PaymentSummary{}, fmt.Errorf("%w: carId is required", ErrBadRequest)
	}
	if h.Days < 0 || h.Days > MaxHandoffDays {
		return PaymentSummary{}, fmt.Errorf("%w: days out of range", ErrBadRequest)
	}
	v, err := cat.Vehicle(h.CarID)
	if err != nil {
		return PaymentSummary{}, err
	}

	lines := quote.AddonLines(h.Addons, h.Days, cat.Addons())
	var addonsTotal int64
	for _, l := range lines {
		addonsTotal += l.Amount
	}
	sub := v.PricePerDay * int64(h.Days)
	net := max(0, h.Amount-addonsTotal)
	discount := max(0, sub-net)

	return PaymentSummary{
		Handoff:         h,
		Vehicle:         v,
		Addons:          lines,
		AddonsTotal:     addonsTotal,
		SubTotal:        sub,
		VehicleNet:      net,
		DiscountAmount:  discount,
		DiscountPercent: quote.ReportedPercent(sub, discount),
		Total:           types.THB(h.Amount),
		TotalText:       types.FormatTHB(h.Amount),
		Methods:         []PaymentMethod{MethodPromptPay, MethodCard, MethodTransfer},
	}, nil
}
