package tables

import (
	"database/sql"
	"testing"

	"github.com/atelierpress/devis/internal/db"
	"github.com/atelierpress/devis/internal/migrations"
	"github.com/atelierpress/devis/internal/pricing"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open in-memory sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewStore(database), database
}

func seedScreenPrint(t *testing.T, database *sql.DB) {
	t.Helper()

	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO pricing_config (id, discount_percent, indexation_percent, packaging_per_piece, carton_price, vectorization_price, parcel_per_carton, courier_per_km, courier_minimum)
		  VALUES (1, 5, 2, 0.35, 2.50, 15, 9.90, 1.80, 25)`, nil},
		{`INSERT INTO technique_settings (technique, min_quantity, fee_per_color, fee_small_digitization, fee_large_digitization, small_digitization_threshold)
		  VALUES ('screen_print', 10, 25, 0, 0, 0), ('embroidery', 5, 0, 40, 90, 10000), ('dtf', 1, 0, 0, 0, 0)`, nil},
		{`INSERT INTO quantity_tiers (technique, label, min_qty, max_qty, position)
		  VALUES ('screen_print', '1-10', 1, 10, 0), ('screen_print', '11+', 11, NULL, 1),
		         ('embroidery', '1+', 1, NULL, 0), ('dtf', '1+', 1, NULL, 0)`, nil},
		{`INSERT INTO stitch_ranges (size, label, min_stitches, max_stitches, position)
		  VALUES ('small', '0-5000', 0, 5000, 0), ('large', '0-20000', 0, 20000, 0)`, nil},
		{`INSERT INTO dtf_dimensions (label, position) VALUES ('10x10 cm', 0)`, nil},
		{`INSERT INTO print_options (id, name, surcharge_percent, active)
		  VALUES ('puff', 'Puff ink', 15, TRUE), ('retired', 'Old finish', 10, FALSE)`, nil},
		{`INSERT INTO price_entries (technique, matrix, entry_key, unit_price)
		  VALUES ('screen_print', 'light', ?, 2.20), ('screen_print', 'dark', ?, 2.55),
		         ('embroidery', 'small', ?, 4.50), ('dtf', 'dtf', ?, 3.20)`,
			[]any{
				pricing.ColorKey("1-10", 2),
				pricing.ColorKey("1-10", 2),
				pricing.StitchKey("1+", "0-5000"),
				pricing.DimensionKey("1+", "10x10 cm"),
			}},
	}
	for _, stmt := range stmts {
		if _, err := database.Exec(stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed statement failed: %v", err)
		}
	}
}

func TestPriceTableAssemblesScreenPrint(t *testing.T) {
	store, database := newTestStore(t)
	seedScreenPrint(t, database)

	table, err := store.PriceTable(pricing.TechniqueScreenPrint)
	if err != nil {
		t.Fatalf("PriceTable returned error: %v", err)
	}

	if table.MinQuantity != 10 || table.FeePerColor != 25 {
		t.Fatalf("unexpected settings: %+v", table)
	}
	if len(table.Tiers) != 2 || table.Tiers[0].Label != "1-10" || table.Tiers[1].Max != nil {
		t.Fatalf("unexpected tiers: %+v", table.Tiers)
	}
	if table.Tiers[0].Max == nil || *table.Tiers[0].Max != 10 {
		t.Fatalf("expected bounded first tier, got %+v", table.Tiers[0])
	}
	if price, ok := table.LightMatrix.Lookup(pricing.ColorKey("1-10", 2)); !ok || price != 2.20 {
		t.Fatalf("unexpected light price: %v (configured=%v)", price, ok)
	}
	if price, ok := table.DarkMatrix.Lookup(pricing.ColorKey("1-10", 2)); !ok || price != 2.55 {
		t.Fatalf("unexpected dark price: %v (configured=%v)", price, ok)
	}
	if len(table.Options) != 1 || table.Options[0].ID != "puff" {
		t.Fatalf("inactive options must be excluded, got %+v", table.Options)
	}
	// Embroidery and DTF settings must not bleed into the screen print table.
	if table.FeeSmallDigitization != 0 || table.SmallDigitizationThreshold != 0 {
		t.Fatalf("embroidery fees leaked into screen print table: %+v", table)
	}
}

func TestPriceTableAssemblesEmbroideryAndDTF(t *testing.T) {
	store, database := newTestStore(t)
	seedScreenPrint(t, database)

	embroidery, err := store.PriceTable(pricing.TechniqueEmbroidery)
	if err != nil {
		t.Fatalf("PriceTable(embroidery) returned error: %v", err)
	}
	if embroidery.FeeSmallDigitization != 40 || embroidery.FeeLargeDigitization != 90 || embroidery.SmallDigitizationThreshold != 10000 {
		t.Fatalf("unexpected embroidery settings: %+v", embroidery)
	}
	if len(embroidery.SmallStitchRanges) != 1 || embroidery.SmallStitchRanges[0].Label != "0-5000" {
		t.Fatalf("unexpected small stitch ranges: %+v", embroidery.SmallStitchRanges)
	}
	if price, ok := embroidery.SmallMatrix.Lookup(pricing.StitchKey("1+", "0-5000")); !ok || price != 4.50 {
		t.Fatalf("unexpected embroidery price: %v (configured=%v)", price, ok)
	}

	dtf, err := store.PriceTable(pricing.TechniqueDTF)
	if err != nil {
		t.Fatalf("PriceTable(dtf) returned error: %v", err)
	}
	if len(dtf.Dimensions) != 1 || dtf.Dimensions[0] != "10x10 cm" {
		t.Fatalf("unexpected dimensions: %+v", dtf.Dimensions)
	}
	if price, ok := dtf.DTFMatrix.Lookup(pricing.DimensionKey("1+", "10x10 cm")); !ok || price != 3.20 {
		t.Fatalf("unexpected dtf price: %v (configured=%v)", price, ok)
	}
}

func TestPriceTableRejectsUnknownTechnique(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.PriceTable(pricing.Technique("laser")); err == nil {
		t.Fatal("expected an error for an unknown technique")
	}
}

func TestPricingConfigRoundTrip(t *testing.T) {
	store, database := newTestStore(t)
	seedScreenPrint(t, database)

	cfg, err := store.PricingConfig()
	if err != nil {
		t.Fatalf("PricingConfig returned error: %v", err)
	}
	if cfg.DiscountPercent != 5 || cfg.CourierMinimum != 25 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	cfg.DiscountPercent = 12
	cfg.VectorizationPrice = 18
	if err := store.UpdatePricingConfig(cfg); err != nil {
		t.Fatalf("UpdatePricingConfig returned error: %v", err)
	}

	updated, err := store.PricingConfig()
	if err != nil {
		t.Fatalf("PricingConfig after update returned error: %v", err)
	}
	if updated.DiscountPercent != 12 || updated.VectorizationPrice != 18 {
		t.Fatalf("update did not persist: %+v", updated)
	}
}

func TestUpsertAndDeletePriceEntry(t *testing.T) {
	store, database := newTestStore(t)
	seedScreenPrint(t, database)

	key := pricing.ColorKey("11+", 3)
	if err := store.UpsertPriceEntry(pricing.TechniqueScreenPrint, MatrixLight, key, 1.95); err != nil {
		t.Fatalf("UpsertPriceEntry returned error: %v", err)
	}
	if err := store.UpsertPriceEntry(pricing.TechniqueScreenPrint, MatrixLight, key, 1.80); err != nil {
		t.Fatalf("UpsertPriceEntry update returned error: %v", err)
	}

	table, err := store.PriceTable(pricing.TechniqueScreenPrint)
	if err != nil {
		t.Fatalf("PriceTable returned error: %v", err)
	}
	if price, ok := table.LightMatrix.Lookup(key); !ok || price != 1.80 {
		t.Fatalf("expected updated price 1.80, got %v (configured=%v)", price, ok)
	}

	deleted, err := store.DeletePriceEntry(pricing.TechniqueScreenPrint, MatrixLight, key)
	if err != nil {
		t.Fatalf("DeletePriceEntry returned error: %v", err)
	}
	if !deleted {
		t.Fatal("expected the entry to be deleted")
	}

	table, err = store.PriceTable(pricing.TechniqueScreenPrint)
	if err != nil {
		t.Fatalf("PriceTable returned error: %v", err)
	}
	if _, ok := table.LightMatrix.Lookup(key); ok {
		t.Fatal("a deleted entry must read as not configured")
	}

	deleted, err = store.DeletePriceEntry(pricing.TechniqueScreenPrint, MatrixLight, key)
	if err != nil {
		t.Fatalf("DeletePriceEntry second call returned error: %v", err)
	}
	if deleted {
		t.Fatal("deleting a missing entry must report false")
	}
}
