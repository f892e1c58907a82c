// README: Immutable catalog snapshot (vehicles, add-ons, branch points) built from a validated fixture.
package catalog

import (
	"bytes"
	"cmp"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultFixture []byte

// Catalog is read-only after New and safe for concurrent use.
type Catalog struct {
	vehicles   []Vehicle
	byID       map[string]int
	addons     []AddonDefinition
	addonByKey map[string]int
	branches   []string
	branchSet  map[string]struct{}
}

// DefaultFixture decodes the embedded storefront catalog.
func DefaultFixture() (Fixture, error) {
	return DecodeFixture(bytes.NewReader(defaultFixture))
}

func LoadFixtureFile(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, err
	}
	defer f.Close()
	return DecodeFixture(f)
}

func DecodeFixture(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		return Fixture{}, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	return fx, nil
}

func New(fx Fixture) (*Catalog, error) {
	c := &Catalog{
		vehicles:   make([]Vehicle, 0, len(fx.Vehicles)),
		byID:       make(map[string]int, len(fx.Vehicles)),
		addons:     make([]AddonDefinition, 0, len(fx.Addons)),
		addonByKey: make(map[string]int, len(fx.Addons)),
		branches:   make([]string, 0, len(fx.Branches)),
		branchSet:  make(map[string]struct{}, len(fx.Branches)),
	}

	for _, v := range fx.Vehicles {
		if err := validateVehicle(v); err != nil {
			return nil, err
		}
		if _, dup := c.byID[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate vehicle id %q", ErrInvalid, v.ID)
		}
		c.byID[v.ID] = len(c.vehicles)
		c.vehicles = append(c.vehicles, v)
	}

	for _, a := range fx.Addons {
		if a.Key == "" || a.Title == "" {
			return nil, fmt.Errorf("%w: add-on needs key and title", ErrInvalid)
		}
		if _, err := ParsePricingMode(string(a.PricingMode)); err != nil {
			return nil, err
		}
		if a.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: add-on %q has negative price", ErrInvalid, a.Key)
		}
		if _, dup := c.addonByKey[a.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate add-on key %q", ErrInvalid, a.Key)
		}
		c.addonByKey[a.Key] = len(c.addons)
		c.addons = append(c.addons, a)
	}

	for _, b := range fx.Branches {
		b = strings.TrimSpace(b)
		if b == "" {
			return nil, fmt.Errorf("%w: empty branch name", ErrInvalid)
		}
		if _, dup := c.branchSet[b]; dup {
			return nil, fmt.Errorf("%w: duplicate branch %q", ErrInvalid, b)
		}
		c.branchSet[b] = struct{}{}
		c.branches = append(c.branches, b)
	}
	return c, nil
}

func validateVehicle(v Vehicle) error {
	if v.ID == "" || v.Name == "" {
		return fmt.Errorf("%w: vehicle needs id and name", ErrInvalid)
	}
	if _, err := ParseVehicleType(string(v.Type)); err != nil {
		return err
	}
	if _, err := ParseTransmission(string(v.Transmission)); err != nil {
		return err
	}
	if _, err := ParseFuel(string(v.Fuel)); err != nil {
		return err
	}
	if _, err := ParseBadge(string(v.Badge)); err != nil {
		return err
	}
	if v.Seats <= 0 {
		return fmt.Errorf("%w: vehicle %q seats must be positive", ErrInvalid, v.ID)
	}
	if v.PricePerDay <= 0 {
		return fmt.Errorf("%w: vehicle %q price must be positive", ErrInvalid, v.ID)
	}
	if !v.Grade.Valid() {
		return fmt.Errorf("%w: vehicle %q grade %d out of range", ErrInvalid, v.ID, v.Grade)
	}
	return nil
}

// Vehicle looks up a vehicle by id.
func (c *Catalog) Vehicle(id string) (Vehicle, error) {
	i, ok := c.byID[id]
	if !ok {
		return Vehicle{}, ErrNotFound
	}
	return c.vehicles[i], nil
}

func (c *Catalog) Addons() []AddonDefinition {
	return slices.Clone(c.addons)
}

func (c *Catalog) Addon(key string) (AddonDefinition, bool) {
	i, ok := c.addonByKey[key]
	if !ok {
		return AddonDefinition{}, false
	}
	return c.addons[i], true
}

func (c *Catalog) IsAddonKey(key string) bool {
	_, ok := c.addonByKey[key]
	return ok
}

func (c *Catalog) Branches() []string {
	return slices.Clone(c.branches)
}

func (c *Catalog) IsBranch(name string) bool {
	_, ok := c.branchSet[name]
	return ok
}

// List returns vehicles whose name contains the query (case-insensitive) and
// whose type matches, ordered by f.Sort. Unknown sorts fall back to price ascending.
func (c *Catalog) List(f Filter) []Vehicle {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Vehicle, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		if q != "" && !strings.Contains(strings.ToLower(v.Name), q) {
			continue
		}
		if f.Type != "" && v.Type != f.Type {
			continue
		}
		out = append(out, v)
	}

	slices.SortStableFunc(out, func(a, b Vehicle) int {
		var r int
		switch f.Sort {
		case SortPriceDesc:
			r = cmp.Compare(b.PricePerDay, a.PricePerDay)
		case SortGradeDesc:
			r = cmp.Compare(b.Grade, a.Grade)
		default:
			r = cmp.Compare(a.PricePerDay, b.PricePerDay)
		}
		if r != 0 {
			return r
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
