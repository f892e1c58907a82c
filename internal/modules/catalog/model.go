// README: Vehicle and add-on definitions plus their closed enum types.
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("vehicle not found")
	ErrInvalid  = errors.New("invalid catalog")
)

type VehicleType string

const (
	TypeEconomy VehicleType = "Economy"
	TypeSedan   VehicleType = "Sedan"
	TypeSUV     VehicleType = "SUV"
	TypeVan     VehicleType = "Van"
)

var VehicleTypes = []VehicleType{TypeEconomy, TypeSedan, TypeSUV, TypeVan}

func ParseVehicleType(s string) (VehicleType, error) {
	for _, t := range VehicleTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: vehicle type %q", ErrInvalid, s)
}

type Transmission string

const (
	TransmissionAuto   Transmission = "Auto"
	TransmissionManual Transmission = "Manual"
)

func ParseTransmission(s string) (Transmission, error) {
	switch Transmission(s) {
	case TransmissionAuto, TransmissionManual:
		return Transmission(s), nil
	}
	return "", fmt.Errorf("%w: transmission %q", ErrInvalid, s)
}

type Fuel string

const (
	FuelGasoline Fuel = "Gasoline"
	FuelHybrid   Fuel = "Hybrid"
	FuelEV       Fuel = "EV"
)

func ParseFuel(s string) (Fuel, error) {
	switch Fuel(s) {
	case FuelGasoline, FuelHybrid, FuelEV:
		return Fuel(s), nil
	}
	return "", fmt.Errorf("%w: fuel %q", ErrInvalid, s)
}

// Badge is optional; the empty value means no badge.
type Badge string

const (
	BadgeNone      Badge = ""
	BadgePopular   Badge = "Popular"
	BadgeNew       Badge = "New"
	BadgeBestValue Badge = "Best value"
)

func ParseBadge(s string) (Badge, error) {
	switch Badge(s) {
	case BadgeNone, BadgePopular, BadgeNew, BadgeBestValue:
		return Badge(s), nil
	}
	return "", fmt.Errorf("%w: badge %q", ErrInvalid, s)
}

// Grade orders vehicles for display only.
type Grade int

func (g Grade) Valid() bool { return g >= 1 && g <= 4 }

type PricingMode string

const (
	PerDay  PricingMode = "perDay"
	PerTrip PricingMode = "perTrip"
)

func ParsePricingMode(s string) (PricingMode, error) {
	switch PricingMode(s) {
	case PerDay, PerTrip:
		return PricingMode(s), nil
	}
	return "", fmt.Errorf("%w: pricing mode %q", ErrInvalid, s)
}

type Vehicle struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Type         VehicleType  `json:"type" yaml:"type"`
	Seats        int          `json:"seats" yaml:"seats"`
	Transmission Transmission `json:"transmission" yaml:"transmission"`
	Fuel         Fuel         `json:"fuel" yaml:"fuel"`
	PricePerDay  int64        `json:"pricePerDay" yaml:"pricePerDay"`
	Badge        Badge        `json:"badge,omitempty" yaml:"badge"`
	Grade        Grade        `json:"grade" yaml:"grade"`
	Image        string       `json:"image,omitempty" yaml:"image"`
}

type AddonDefinition struct {
	Key         string      `json:"key" yaml:"key"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description"`
	PricingMode PricingMode `json:"pricingMode" yaml:"pricingMode"`
	UnitPrice   int64       `json:"unitPrice" yaml:"unitPrice"`
}

// Fixture is the raw static configuration a Catalog is built from.
type Fixture struct {
	Vehicles []Vehicle         `yaml:"vehicles"`
	Addons   []AddonDefinition `yaml:"addons"`
	Branches []string          `yaml:"branches"`
}

type SortOrder string

const (
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortGradeDesc SortOrder = "grade_desc"
)

// Filter narrows a catalog listing. An empty Type means all types.
type Filter struct {
	Query string
	Type  VehicleType
	Sort  SortOrder
}
