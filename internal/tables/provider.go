package tables

import (
	"sync"
	"time"

	"github.com/atelierpress/devis/internal/pricing"
)

// Snapshot is an immutable view of every price table plus the pricing
// configuration, taken at one point in time. Pricing calls always work
// against one snapshot, so a quote can never see a half-updated table.
type Snapshot struct {
	Tables    map[pricing.Technique]pricing.PriceTable
	Config    pricing.Config
	FetchedAt time.Time
}

// Table returns the snapshot's table for a technique.
func (s *Snapshot) Table(technique pricing.Technique) (pricing.PriceTable, bool) {
	table, ok := s.Tables[technique]
	return table, ok
}

// Provider caches snapshots with a TTL. A stale snapshot is rebuilt in full
// before it replaces the cached one; readers either see the old snapshot or
// the new one, never a mix.
type Provider struct {
	store *Store
	ttl   time.Duration

	mu      sync.RWMutex
	current *Snapshot
}

func NewProvider(store *Store, ttl time.Duration) *Provider {
	return &Provider{store: store, ttl: ttl}
}

// Snapshot returns the cached snapshot, rebuilding it when expired. On a
// rebuild failure the previous snapshot keeps serving if one exists.
func (p *Provider) Snapshot() (*Snapshot, error) {
	p.mu.RLock()
	current := p.current
	p.mu.RUnlock()

	if current != nil && time.Since(current.FetchedAt) < p.ttl {
		return current, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if p.current != nil && time.Since(p.current.FetchedAt) < p.ttl {
		return p.current, nil
	}

	fresh, err := p.build()
	if err != nil {
		if p.current != nil {
			return p.current, nil
		}
		return nil, err
	}
	p.current = fresh
	return fresh, nil
}

// Invalidate drops the cached snapshot. Admin writes call this so the next
// pricing call sees the change immediately instead of waiting out the TTL.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

func (p *Provider) build() (*Snapshot, error) {
	allTables, err := p.store.AllTables()
	if err != nil {
		return nil, err
	}
	cfg, err := p.store.PricingConfig()
	if err != nil {
		return nil, err
	}
	return &Snapshot{Tables: allTables, Config: cfg, FetchedAt: time.Now()}, nil
}
