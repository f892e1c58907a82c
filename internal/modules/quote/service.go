// README: Quotation engine; assembles window, days, discount, add-ons and location into a Result.
package quote

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"carrental/internal/modules/catalog"
)

// DefaultChatThreshold is the grand total from which a human-assisted channel is suggested.
const DefaultChatThreshold int64 = 10000

type Config struct {
	Tiers         []Tier
	ChatThreshold int64
	// Location interprets the wall-clock dates; nil means UTC.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{Tiers: DefaultTiers, ChatThreshold: DefaultChatThreshold, Location: time.UTC}
}

// Catalog is the read-only lookup the engine needs.
type Catalog interface {
	Vehicle(id string) (catalog.Vehicle, error)
	Addons() []catalog.AddonDefinition
	Branches() []string
}

// Engine holds only immutable configuration; Compute is safe for concurrent use.
type Engine struct {
	cfg      Config
	catalog  Catalog
	addons   []catalog.AddonDefinition
	branches []string
}

func NewEngine(cat Catalog, cfg Config) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("quote: catalog is required")
	}
	if err := ValidateTiers(cfg.Tiers); err != nil {
		return nil, err
	}
	if cfg.ChatThreshold < 0 {
		return nil, fmt.Errorf("quote: chat threshold %d is negative", cfg.ChatThreshold)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.Tiers = slices.Clone(cfg.Tiers)
	return &Engine{
		cfg:      cfg,
		catalog:  cat,
		addons:   cat.Addons(),
		branches: cat.Branches(),
	}, nil
}

func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.Tiers = slices.Clone(e.cfg.Tiers)
	return cfg
}

// ComputeForVehicle resolves the vehicle id through the catalog, then computes.
func (e *Engine) ComputeForVehicle(vehicleID string, in Input) Result {
	in.Vehicle = nil
	if v, err := e.catalog.Vehicle(vehicleID); err == nil {
		in.Vehicle = &v
	}
	return e.Compute(in)
}

// Compute validates in order: vehicle, window completeness, date-time
// validity, window ordering, location. The first failure decides the result.
func (e *Engine) Compute(in Input) Result {
	res := Result{Location: ResolveLocation(in.Location, e.branches)}

	if in.Vehicle == nil {
		return invalid(res, ReasonUnknownVehicle)
	}

	w, err := ResolveWindow(in.Window, e.cfg.Location)
	switch {
	case errors.Is(err, ErrIncomplete):
		res.Status = StatusIncomplete
		return res
	case errors.Is(err, ErrInvalidDateTime):
		return invalid(res, ReasonInvalidDateTime)
	case errors.Is(err, ErrReturnBeforePickup):
		return invalid(res, ReasonReturnBeforePickup)
	}
	res.Window = &w

	if !res.Location.Valid() {
		return invalid(res, ReasonInvalidLocation)
	}

	days := BillableDays(w.Pickup, w.Return)
	pct := DiscountPercent(days, e.cfg.Tiers)
	p := ApplyDiscount(in.Vehicle.PricePerDay, days, pct)
	lines := AddonLines(in.SelectedAddonKeys, days, e.addons)

	var addonsTotal int64
	for _, l := range lines {
		addonsTotal += l.Amount
	}
	grand := p.VehicleNet + addonsTotal

	res.Status = StatusOK
	res.Quote = &Quote{
		VehicleID:                 in.Vehicle.ID,
		PricePerDay:               in.Vehicle.PricePerDay,
		Days:                      days,
		DiscountPercent:           pct,
		SubTotal:                  p.SubTotal,
		DiscountAmount:            p.DiscountAmount,
		VehicleNet:                p.VehicleNet,
		AddonsTotal:               addonsTotal,
		GrandTotal:                grand,
		RecommendAlternateChannel: grand >= e.cfg.ChatThreshold,
		Addons:                    lines,
	}
	return res
}

func invalid(res Result, reason Reason) Result {
	res.Status = StatusInvalid
	res.Reason = reason
	return res
}

func (e *Engine) Addons() []catalog.AddonDefinition {
	return slices.Clone(e.addons)
}

func (e *Engine) Branches() []string {
	return slices.Clone(e.branches)
}
