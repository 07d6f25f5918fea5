package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"skypark/internal/db"
)

type PriceRepository struct {
	DB *sql.DB
}

func NewPriceRepository(database *sql.DB) *PriceRepository {
	return &PriceRepository{DB: database}
}

// ErrNoPrice marks a (package, duration tier) pair with no configured price.
var ErrNoPrice = errors.New("no price configured")

func (r *PriceRepository) GetPackagePrice(pkg, durationTier string) (int, error) {
	var price int
	err := r.DB.QueryRow(
		`SELECT price_pence FROM package_prices WHERE package = $1 AND duration_tier = $2`,
		pkg, durationTier,
	).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w for package %q, tier %q", ErrNoPrice, pkg, durationTier)
		}
		return 0, fmt.Errorf("error querying price for package %q: %w", pkg, err)
	}
	return price, nil
}

func (r *PriceRepository) GetPrices() ([]db.PackagePrice, error) {
	query := `
		SELECT package, duration_tier, price_pence
		FROM package_prices
		ORDER BY package, duration_tier`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing prices: %w", err)
	}
	defer rows.Close()

	var prices []db.PackagePrice
	for rows.Next() {
		var p db.PackagePrice
		if err := rows.Scan(&p.Package, &p.DurationTier, &p.PricePence); err != nil {
			return nil, fmt.Errorf("error scanning price row: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (r *PriceRepository) UpdatePackagePrice(pkg, durationTier string, pricePence int) error {
	query := `
		INSERT INTO package_prices (package, duration_tier, price_pence)
		VALUES ($1, $2, $3)
		ON CONFLICT (package, duration_tier)
		DO UPDATE SET price_pence = $3`
	_, err := r.DB.Exec(query, pkg, durationTier, pricePence)
	return err
}
