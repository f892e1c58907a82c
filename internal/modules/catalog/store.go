// README: Catalog store backed by PostgreSQL; loads and seeds the fixture tables.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Load reads every catalog table in display order. Validation is left to New.
func (s *Store) Load(ctx context.Context) (Fixture, error) {
	var fx Fixture

	rows, err := s.db.Query(ctx, `
        SELECT id, name, type, seats, transmission, fuel, price_per_day, badge, grade, image
        FROM vehicles
        ORDER BY position, id`)
	if err != nil {
		return Fixture{}, fmt.Errorf("query vehicles: %w", err)
	}
	for rows.Next() {
		var v Vehicle
		var vType, trans, fuel, badge string
		var grade int
		if err := rows.Scan(&v.ID, &v.Name, &vType, &v.Seats, &trans, &fuel, &v.PricePerDay, &badge, &grade, &v.Image); err != nil {
			rows.Close()
			return Fixture{}, err
		}
		v.Type = VehicleType(vType)
		v.Transmission = Transmission(trans)
		v.Fuel = Fuel(fuel)
		v.Badge = Badge(badge)
		v.Grade = Grade(grade)
		fx.Vehicles = append(fx.Vehicles, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Fixture{}, err
	}

	rows, err = s.db.Query(ctx, `
        SELECT key, title, description, pricing_mode, unit_price
        FROM addon_definitions
        ORDER BY position, key`)
	if err != nil {
		return Fixture{}, fmt.Errorf("query addons: %w", err)
	}
	for rows.Next() {
		var a AddonDefinition
		var mode string
		if err := rows.Scan(&a.Key, &a.Title, &a.Description, &mode, &a.UnitPrice); err != nil {
			rows.Close()
			return Fixture{}, err
		}
		a.PricingMode = PricingMode(mode)
		fx.Addons = append(fx.Addons, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Fixture{}, err
	}

	rows, err = s.db.Query(ctx, `SELECT name FROM branch_points ORDER BY position, name`)
	if err != nil {
		return Fixture{}, fmt.Errorf("query branches: %w", err)
	}
	branches, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return Fixture{}, err
	}
	fx.Branches = branches
	return fx, nil
}

// Seed upserts a fixture in one transaction, keeping the fixture order as position.
func (s *Store) Seed(ctx context.Context, fx Fixture) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for i, v := range fx.Vehicles {
			if _, err := tx.Exec(ctx, `
                INSERT INTO vehicles (id, name, type, seats, transmission, fuel, price_per_day, badge, grade, image, position)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                ON CONFLICT (id) DO UPDATE SET
                    name = EXCLUDED.name, type = EXCLUDED.type, seats = EXCLUDED.seats,
                    transmission = EXCLUDED.transmission, fuel = EXCLUDED.fuel,
                    price_per_day = EXCLUDED.price_per_day, badge = EXCLUDED.badge,
                    grade = EXCLUDED.grade, image = EXCLUDED.image, position = EXCLUDED.position`,
				v.ID, v.Name, string(v.Type), v.Seats, string(v.Transmission), string(v.Fuel),
				v.PricePerDay, string(v.Badge), int(v.Grade), v.Image, i,
			); err != nil {
				return fmt.Errorf("seed vehicle %s: %w", v.ID, err)
			}
		}
		for i, a := range fx.Addons {
			if _, err := tx.Exec(ctx, `
                INSERT INTO addon_definitions (key, title, description, pricing_mode, unit_price, position)
                VALUES ($1, $2, $3, $4, $5, $6)
                ON CONFLICT (key) DO UPDATE SET
                    title = EXCLUDED.title, description = EXCLUDED.description,
                    pricing_mode = EXCLUDED.pricing_mode, unit_price = EXCLUDED.unit_price,
                    position = EXCLUDED.position`,
				a.Key, a.Title, a.Description, string(a.PricingMode), a.UnitPrice, i,
			); err != nil {
				return fmt.Errorf("seed addon %s: %w", a.Key, err)
			}
		}
		for i, b := range fx.Branches {
			if _, err := tx.Exec(ctx, `
                INSERT INTO branch_points (name, position) VALUES ($1, $2)
                ON CONFLICT (name) DO UPDATE SET position = EXCLUDED.position`,
				b, i,
			); err != nil {
				return fmt.Errorf("seed branch: %w", err)
			}
		}
		return nil
	})
}
