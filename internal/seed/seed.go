// Package seed installs the startup dataset: the admin user, the pricing
// configuration singleton and a starter price table per technique. Every
// step is idempotent; prices already edited by an admin are never
// overwritten.
package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/atelierpress/devis/internal/pricing"
	"github.com/atelierpress/devis/internal/tables"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	steps := []func(*sql.Tx, *Stats) error{
		func(tx *sql.Tx, s *Stats) error { return seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, s) },
		ensurePricingConfig,
		ensureTechniqueSettings,
		ensureQuantityTiers,
		ensureStitchRanges,
		ensureDTFDimensions,
		ensurePrintOptions,
		ensurePriceEntries,
	}
	for _, step := range steps {
		if err := step(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, HashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// HashPassword returns the stored form of a password. The login handler
// hashes the submitted password the same way.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func ensurePricingConfig(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM pricing_config WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check pricing config existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO pricing_config (
			id,
			discount_percent,
			indexation_percent,
			packaging_per_piece,
			carton_price,
			vectorization_price,
			parcel_per_carton,
			courier_per_km,
			courier_minimum
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`, 0, 0, 0.35, 2.50, 15, 9.90, 1.80, 25); err != nil {
		return fmt.Errorf("insert pricing config singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureTechniqueSettings(tx *sql.Tx, stats *Stats) error {
	settings := []struct {
		technique      pricing.Technique
		minQuantity    int
		feePerColor    float64
		feeSmall       float64
		feeLarge       float64
		smallThreshold int
	}{
		{pricing.TechniqueScreenPrint, 10, 25, 0, 0, 0},
		{pricing.TechniqueEmbroidery, 5, 0, 40, 90, 10000},
		{pricing.TechniqueDTF, 1, 0, 0, 0, 0},
	}

	for _, s := range settings {
		result, err := tx.Exec(`
			INSERT INTO technique_settings (
				technique, min_quantity, fee_per_color,
				fee_small_digitization, fee_large_digitization, small_digitization_threshold
			)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(technique) DO NOTHING
		`, string(s.technique), s.minQuantity, s.feePerColor, s.feeSmall, s.feeLarge, s.smallThreshold)
		if err != nil {
			return fmt.Errorf("insert technique settings for %s: %w", s.technique, err)
		}
		countInsert(result, stats)
	}
	return nil
}

type tierSeed struct {
	label string
	min   int
	max   *int
}

func bounded(label string, min, max int) tierSeed {
	return tierSeed{label: label, min: min, max: &max}
}

func unbounded(label string, min int) tierSeed {
	return tierSeed{label: label, min: min}
}

func defaultTiers() map[pricing.Technique][]tierSeed {
	return map[pricing.Technique][]tierSeed{
		pricing.TechniqueScreenPrint: {
			bounded("1-10", 1, 10),
			bounded("11-25", 11, 25),
			bounded("26-50", 26, 50),
			bounded("51-100", 51, 100),
			unbounded("101+", 101),
		},
		pricing.TechniqueEmbroidery: {
			bounded("1-10", 1, 10),
			bounded("11-25", 11, 25),
			unbounded("26+", 26),
		},
		pricing.TechniqueDTF: {
			bounded("1-20", 1, 20),
			bounded("21-50", 21, 50),
			unbounded("51+", 51),
		},
	}
}

func ensureQuantityTiers(tx *sql.Tx, stats *Stats) error {
	for technique, tiers := range defaultTiers() {
		for position, tier := range tiers {
			var maxQty any
			if tier.max != nil {
				maxQty = *tier.max
			}
			result, err := tx.Exec(`
				INSERT INTO quantity_tiers (technique, label, min_qty, max_qty, position)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(technique, label) DO NOTHING
			`, string(technique), tier.label, tier.min, maxQty, position)
			if err != nil {
				return fmt.Errorf("insert quantity tier %s/%s: %w", technique, tier.label, err)
			}
			countInsert(result, stats)
		}
	}
	return nil
}

func ensureStitchRanges(tx *sql.Tx, stats *Stats) error {
	ranges := map[pricing.EmbroiderySize][]pricing.StitchRange{
		pricing.EmbroiderySmall: {
			{Label: "0-5000", Min: 0, Max: 5000},
			{Label: "5001-10000", Min: 5001, Max: 10000},
		},
		pricing.EmbroideryLarge: {
			{Label: "0-10000", Min: 0, Max: 10000},
			{Label: "10001-20000", Min: 10001, Max: 20000},
		},
	}

	for size, sizeRanges := range ranges {
		for position, r := range sizeRanges {
			result, err := tx.Exec(`
				INSERT INTO stitch_ranges (size, label, min_stitches, max_stitches, position)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(size, label) DO NOTHING
			`, string(size), r.Label, r.Min, r.Max, position)
			if err != nil {
				return fmt.Errorf("insert stitch range %s/%s: %w", size, r.Label, err)
			}
			countInsert(result, stats)
		}
	}
	return nil
}

func ensureDTFDimensions(tx *sql.Tx, stats *Stats) error {
	for position, label := range []string{"10x10 cm", "20x30 cm", "30x40 cm"} {
		result, err := tx.Exec(`
			INSERT INTO dtf_dimensions (label, position)
			VALUES (?, ?)
			ON CONFLICT(label) DO NOTHING
		`, label, position)
		if err != nil {
			return fmt.Errorf("insert dtf dimension %s: %w", label, err)
		}
		countInsert(result, stats)
	}
	return nil
}

func ensurePrintOptions(tx *sql.Tx, stats *Stats) error {
	options := []pricing.PrintOption{
		{ID: "puff", Name: "Puff ink", SurchargePercent: 15},
		{ID: "metallic", Name: "Metallic ink", SurchargePercent: 25},
		{ID: "glow", Name: "Glow in the dark ink", SurchargePercent: 20},
	}

	for _, opt := range options {
		result, err := tx.Exec(`
			INSERT INTO print_options (id, name, surcharge_percent, active)
			VALUES (?, ?, ?, TRUE)
			ON CONFLICT(id) DO NOTHING
		`, opt.ID, opt.Name, opt.SurchargePercent)
		if err != nil {
			return fmt.Errorf("insert print option %s: %w", opt.ID, err)
		}
		countInsert(result, stats)
	}
	return nil
}

// Starter unit prices per tier. Screen printing carries prices for 1 to 4
// colors everywhere; 5 and 6 colors only open up from the 26-50 tier, so
// small orders report an unlock minimum instead of a price.
var screenPrintLight = map[string][]float64{
	"1-10":   {2.80, 3.40, 3.95, 4.45},
	"11-25":  {2.40, 2.90, 3.35, 3.80},
	"26-50":  {2.00, 2.45, 2.85, 3.20, 3.60, 3.95},
	"51-100": {1.70, 2.10, 2.45, 2.75, 3.10, 3.40},
	"101+":   {1.45, 1.80, 2.10, 2.35, 2.65, 2.90},
}

var embroiderySmall = map[string][]float64{
	"1-10":  {4.50, 6.00},
	"11-25": {3.80, 5.10},
	"26+":   {3.20, 4.30},
}

var embroideryLarge = map[string][]float64{
	"1-10":  {7.20, 9.40},
	"11-25": {6.10, 8.00},
	"26+":   {5.20, 6.80},
}

var dtfPrices = map[string][]float64{
	"1-20":  {3.20, 5.40, 7.10},
	"21-50": {2.70, 4.60, 6.00},
	"51+":   {2.30, 3.90, 5.10},
}

const darkToneUplift = 0.35

func ensurePriceEntries(tx *sql.Tx, stats *Stats) error {
	insert := func(technique pricing.Technique, matrix, key string, price float64) error {
		result, err := tx.Exec(`
			INSERT INTO price_entries (technique, matrix, entry_key, unit_price)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(technique, matrix, entry_key) DO NOTHING
		`, string(technique), matrix, key, price)
		if err != nil {
			return fmt.Errorf("insert price entry %s/%s/%s: %w", technique, matrix, key, err)
		}
		countInsert(result, stats)
		return nil
	}

	for tierLabel, prices := range screenPrintLight {
		for i, price := range prices {
			key := pricing.ColorKey(tierLabel, i+1)
			if err := insert(pricing.TechniqueScreenPrint, tables.MatrixLight, key, price); err != nil {
				return err
			}
			if err := insert(pricing.TechniqueScreenPrint, tables.MatrixDark, key, price+darkToneUplift); err != nil {
				return err
			}
		}
	}

	smallLabels := []string{"0-5000", "5001-10000"}
	for tierLabel, prices := range embroiderySmall {
		for i, price := range prices {
			if err := insert(pricing.TechniqueEmbroidery, tables.MatrixSmall, pricing.StitchKey(tierLabel, smallLabels[i]), price); err != nil {
				return err
			}
		}
	}

	largeLabels := []string{"0-10000", "10001-20000"}
	for tierLabel, prices := range embroideryLarge {
		for i, price := range prices {
			if err := insert(pricing.TechniqueEmbroidery, tables.MatrixLarge, pricing.StitchKey(tierLabel, largeLabels[i]), price); err != nil {
				return err
			}
		}
	}

	dimensions := []string{"10x10 cm", "20x30 cm", "30x40 cm"}
	for tierLabel, prices := range dtfPrices {
		for i, price := range prices {
			if err := insert(pricing.TechniqueDTF, tables.MatrixDTF, pricing.DimensionKey(tierLabel, dimensions[i]), price); err != nil {
				return err
			}
		}
	}

	return nil
}

func countInsert(result sql.Result, stats *Stats) {
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		stats.Inserts += int(affected)
	}
}
