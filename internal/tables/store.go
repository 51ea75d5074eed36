// Package tables loads pricing datasets from the database and hands the
// engine immutable snapshots. The engine itself never touches the database.
package tables

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/atelierpress/devis/internal/pricing"
)

// Matrix identifiers used by the price_entries table. They select which
// PriceMatrix of the technique's table an entry belongs to.
const (
	MatrixLight = "light"
	MatrixDark  = "dark"
	MatrixSmall = "small"
	MatrixLarge = "large"
	MatrixDTF   = "dtf"
)

// ScreenPrintColorCounts is the closed set of supported color counts.
var ScreenPrintColorCounts = []int{1, 2, 3, 4, 5, 6}

// Store assembles pricing.PriceTable and pricing.Config values from their
// relational representation.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// PricingConfig reads the singleton pricing configuration row.
func (s *Store) PricingConfig() (pricing.Config, error) {
	var cfg pricing.Config
	err := s.db.QueryRow(`
		SELECT discount_percent, indexation_percent, packaging_per_piece, carton_price,
		       vectorization_price, parcel_per_carton, courier_per_km, courier_minimum
		FROM pricing_config
		WHERE id = 1
	`).Scan(
		&cfg.DiscountPercent,
		&cfg.IndexationPercent,
		&cfg.PackagingPerPiece,
		&cfg.CartonPrice,
		&cfg.VectorizationPrice,
		&cfg.ParcelPerCarton,
		&cfg.CourierPerKm,
		&cfg.CourierMinimum,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.Config{}, fmt.Errorf("pricing_config singleton not found")
		}
		return pricing.Config{}, fmt.Errorf("query pricing_config: %w", err)
	}
	return cfg, nil
}

// UpdatePricingConfig replaces the singleton pricing configuration row.
func (s *Store) UpdatePricingConfig(cfg pricing.Config) error {
	_, err := s.db.Exec(`
		UPDATE pricing_config
		SET
			discount_percent = ?,
			indexation_percent = ?,
			packaging_per_piece = ?,
			carton_price = ?,
			vectorization_price = ?,
			parcel_per_carton = ?,
			courier_per_km = ?,
			courier_minimum = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		cfg.DiscountPercent,
		cfg.IndexationPercent,
		cfg.PackagingPerPiece,
		cfg.CartonPrice,
		cfg.VectorizationPrice,
		cfg.ParcelPerCarton,
		cfg.CourierPerKm,
		cfg.CourierMinimum,
	)
	if err != nil {
		return fmt.Errorf("update pricing_config: %w", err)
	}
	return nil
}

// PriceTable assembles the full price table for one technique.
func (s *Store) PriceTable(technique pricing.Technique) (pricing.PriceTable, error) {
	if !technique.Valid() {
		return pricing.PriceTable{}, fmt.Errorf("unknown technique %q", technique)
	}

	table := pricing.PriceTable{Technique: technique}

	var feePerColor, feeSmall, feeLarge float64
	var smallThreshold int
	err := s.db.QueryRow(`
		SELECT min_quantity, fee_per_color, fee_small_digitization, fee_large_digitization, small_digitization_threshold
		FROM technique_settings
		WHERE technique = ?
	`, string(technique)).Scan(&table.MinQuantity, &feePerColor, &feeSmall, &feeLarge, &smallThreshold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.PriceTable{}, fmt.Errorf("technique_settings missing for %s", technique)
		}
		return pricing.PriceTable{}, fmt.Errorf("query technique_settings: %w", err)
	}

	table.Tiers, err = s.quantityTiers(technique)
	if err != nil {
		return pricing.PriceTable{}, err
	}

	matrices, err := s.priceMatrices(technique)
	if err != nil {
		return pricing.PriceTable{}, err
	}

	switch technique {
	case pricing.TechniqueScreenPrint:
		table.ColorCounts = ScreenPrintColorCounts
		table.LightMatrix = matrices[MatrixLight]
		table.DarkMatrix = matrices[MatrixDark]
		table.FeePerColor = feePerColor
		table.Options, err = s.printOptions()
		if err != nil {
			return pricing.PriceTable{}, err
		}
	case pricing.TechniqueEmbroidery:
		table.SmallMatrix = matrices[MatrixSmall]
		table.LargeMatrix = matrices[MatrixLarge]
		table.FeeSmallDigitization = feeSmall
		table.FeeLargeDigitization = feeLarge
		table.SmallDigitizationThreshold = smallThreshold
		table.SmallStitchRanges, err = s.stitchRanges(pricing.EmbroiderySmall)
		if err != nil {
			return pricing.PriceTable{}, err
		}
		table.LargeStitchRanges, err = s.stitchRanges(pricing.EmbroideryLarge)
		if err != nil {
			return pricing.PriceTable{}, err
		}
	case pricing.TechniqueDTF:
		table.DTFMatrix = matrices[MatrixDTF]
		table.Dimensions, err = s.dtfDimensions()
		if err != nil {
			return pricing.PriceTable{}, err
		}
	}

	return table, nil
}

// AllTables assembles every technique's table in one pass.
func (s *Store) AllTables() (map[pricing.Technique]pricing.PriceTable, error) {
	result := make(map[pricing.Technique]pricing.PriceTable, len(pricing.Techniques))
	for _, technique := range pricing.Techniques {
		table, err := s.PriceTable(technique)
		if err != nil {
			return nil, err
		}
		result[technique] = table
	}
	return result, nil
}

func (s *Store) quantityTiers(technique pricing.Technique) ([]pricing.QuantityTier, error) {
	rows, err := s.db.Query(`
		SELECT label, min_qty, max_qty
		FROM quantity_tiers
		WHERE technique = ?
		ORDER BY position ASC, min_qty ASC
	`, string(technique))
	if err != nil {
		return nil, fmt.Errorf("query quantity_tiers: %w", err)
	}
	defer rows.Close()

	tiers := make([]pricing.QuantityTier, 0)
	for rows.Next() {
		var tier pricing.QuantityTier
		var maxQty sql.NullInt64
		if err := rows.Scan(&tier.Label, &tier.Min, &maxQty); err != nil {
			return nil, fmt.Errorf("scan quantity tier: %w", err)
		}
		if maxQty.Valid {
			max := int(maxQty.Int64)
			tier.Max = &max
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quantity_tiers: %w", err)
	}
	return tiers, nil
}

func (s *Store) priceMatrices(technique pricing.Technique) (map[string]pricing.PriceMatrix, error) {
	rows, err := s.db.Query(`
		SELECT matrix, entry_key, unit_price
		FROM price_entries
		WHERE technique = ?
	`, string(technique))
	if err != nil {
		return nil, fmt.Errorf("query price_entries: %w", err)
	}
	defer rows.Close()

	matrices := map[string]pricing.PriceMatrix{
		MatrixLight: {},
		MatrixDark:  {},
		MatrixSmall: {},
		MatrixLarge: {},
		MatrixDTF:   {},
	}
	for rows.Next() {
		var matrix, key string
		var price float64
		if err := rows.Scan(&matrix, &key, &price); err != nil {
			return nil, fmt.Errorf("scan price entry: %w", err)
		}
		target, ok := matrices[matrix]
		if !ok {
			return nil, fmt.Errorf("price entry %q has unknown matrix %q", key, matrix)
		}
		target[key] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price_entries: %w", err)
	}
	return matrices, nil
}

func (s *Store) stitchRanges(size pricing.EmbroiderySize) ([]pricing.StitchRange, error) {
	rows, err := s.db.Query(`
		SELECT label, min_stitches, max_stitches
		FROM stitch_ranges
		WHERE size = ?
		ORDER BY position ASC, min_stitches ASC
	`, string(size))
	if err != nil {
		return nil, fmt.Errorf("query stitch_ranges: %w", err)
	}
	defer rows.Close()

	ranges := make([]pricing.StitchRange, 0)
	for rows.Next() {
		var r pricing.StitchRange
		if err := rows.Scan(&r.Label, &r.Min, &r.Max); err != nil {
			return nil, fmt.Errorf("scan stitch range: %w", err)
		}
		ranges = append(ranges, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stitch_ranges: %w", err)
	}
	return ranges, nil
}

func (s *Store) dtfDimensions() ([]string, error) {
	rows, err := s.db.Query(`SELECT label FROM dtf_dimensions ORDER BY position ASC, label ASC`)
	if err != nil {
		return nil, fmt.Errorf("query dtf_dimensions: %w", err)
	}
	defer rows.Close()

	dimensions := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan dtf dimension: %w", err)
		}
		dimensions = append(dimensions, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dtf_dimensions: %w", err)
	}
	return dimensions, nil
}

func (s *Store) printOptions() ([]pricing.PrintOption, error) {
	rows, err := s.db.Query(`
		SELECT id, name, surcharge_percent
		FROM print_options
		WHERE active
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query print_options: %w", err)
	}
	defer rows.Close()

	options := make([]pricing.PrintOption, 0)
	for rows.Next() {
		var opt pricing.PrintOption
		if err := rows.Scan(&opt.ID, &opt.Name, &opt.SurchargePercent); err != nil {
			return nil, fmt.Errorf("scan print option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate print_options: %w", err)
	}
	return options, nil
}

// UpsertPriceEntry writes one cell of a price matrix. The caller builds
// entryKey with the pricing key builders so the write side can never drift
// from what the calculator reads.
func (s *Store) UpsertPriceEntry(technique pricing.Technique, matrix, entryKey string, unitPrice float64) error {
	_, err := s.db.Exec(`
		INSERT INTO price_entries (technique, matrix, entry_key, unit_price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(technique, matrix, entry_key) DO UPDATE SET
			unit_price = excluded.unit_price,
			updated_at = CURRENT_TIMESTAMP
	`, string(technique), matrix, entryKey, unitPrice)
	if err != nil {
		return fmt.Errorf("upsert price entry: %w", err)
	}
	return nil
}

// DeletePriceEntry un-configures one cell. A deleted cell is "price not
// configured", which the engine reports as unavailable; writing 0 instead
// would silently make the work free.
func (s *Store) DeletePriceEntry(technique pricing.Technique, matrix, entryKey string) (bool, error) {
	result, err := s.db.Exec(`
		DELETE FROM price_entries
		WHERE technique = ? AND matrix = ? AND entry_key = ?
	`, string(technique), matrix, entryKey)
	if err != nil {
		return false, fmt.Errorf("delete price entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete price entry: %w", err)
	}
	return affected > 0, nil
}
