package tables

import (
	"testing"
	"time"

	"github.com/atelierpress/devis/internal/pricing"
)

func TestProviderCachesSnapshotWithinTTL(t *testing.T) {
	store, database := newTestStore(t)
	seedScreenPrint(t, database)

	provider := NewProvider(store, time.Hour)

	first, err := provider.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	second, err := provider.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached snapshot within the TTL")
	}

	if _, ok := first.Table(pricing.TechniqueScreenPrint); !ok {
		t.Fatal("snapshot is missing the screen print table")
	}
	if first.Config.CourierMinimum != 25 {
		t.Fatalf("snapshot carries wrong config: %+v", first.Config)
	}
}

func TestProviderInvalidateSeesWrites(t *testing.T) {
	store, database := newTestStore(t)
	seedScreenPrint(t, database)

	provider := NewProvider(store, time.Hour)

	before, err := provider.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	key := pricing.ColorKey("11+", 1)
	if _, ok := before.Tables[pricing.TechniqueScreenPrint].LightMatrix.Lookup(key); ok {
		t.Fatal("test expects the entry to start unconfigured")
	}

	if err := store.UpsertPriceEntry(pricing.TechniqueScreenPrint, MatrixLight, key, 1.70); err != nil {
		t.Fatalf("UpsertPriceEntry returned error: %v", err)
	}

	// Without invalidation the old snapshot keeps serving.
	cached, err := provider.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if cached != before {
		t.Fatal("expected the stale snapshot before invalidation")
	}

	provider.Invalidate()
	after, err := provider.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if after == before {
		t.Fatal("expected a rebuilt snapshot after invalidation")
	}
	if price, ok := after.Tables[pricing.TechniqueScreenPrint].LightMatrix.Lookup(key); !ok || price != 1.70 {
		t.Fatalf("rebuilt snapshot is missing the new entry: %v (configured=%v)", price, ok)
	}
}

func TestProviderRefreshesAfterTTL(t *testing.T) {
	store, database := newTestStore(t)
	seedScreenPrint(t, database)

	provider := NewProvider(store, time.Nanosecond)

	first, err := provider.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	time.Sleep(time.Millisecond)
	second, err := provider.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh snapshot after the TTL expired")
	}
}
