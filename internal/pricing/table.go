package pricing

import (
	"fmt"
	"strconv"
)

// QuantityTier is a contiguous quantity range with its own pricing column.
// Max == nil means the tier is unbounded. Label is the stable key component
// used by the price matrices and must not collide within a table.
type QuantityTier struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   *int   `json:"max"`
}

// Contains reports whether quantity falls inside the tier.
func (t QuantityTier) Contains(quantity int) bool {
	return quantity >= t.Min && (t.Max == nil || quantity <= *t.Max)
}

// StitchRange is one embroidery stitch-count bucket.
type StitchRange struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// Contains reports whether stitchCount falls inside the range.
func (r StitchRange) Contains(stitchCount int) bool {
	return stitchCount >= r.Min && stitchCount <= r.Max
}

// PrintOption is a customer-selectable screen-printing add-on applying an
// additive percentage surcharge on the pre-surcharge subtotal.
type PrintOption struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	SurchargePercent float64 `json:"surcharge_percent"`
}

// PriceMatrix is a sparse unit-price matrix keyed by "<tierLabel>-<axis>".
// Presence of a key means the price is configured; a configured price may
// legitimately be zero. Absence is "not configured", never zero.
type PriceMatrix map[string]float64

// Lookup returns the configured unit price for key, distinguishing a
// configured zero from an absent entry.
func (m PriceMatrix) Lookup(key string) (float64, bool) {
	price, ok := m[key]
	return price, ok
}

// ColorKey builds the matrix key for a screen-print tier and color count.
// It is the single source of truth for the key format: both the calculator
// and the admin pricing editor go through it, so read and write sides
// cannot drift.
func ColorKey(tierLabel string, colorCount int) string {
	return tierLabel + "-" + strconv.Itoa(colorCount)
}

// StitchKey builds the matrix key for a tier and embroidery stitch range.
func StitchKey(tierLabel, rangeLabel string) string {
	return tierLabel + "-" + rangeLabel
}

// DimensionKey builds the matrix key for a tier and DTF print dimension.
func DimensionKey(tierLabel, dimension string) string {
	return tierLabel + "-" + dimension
}

// PriceTable is the immutable pricing dataset for one technique. Only the
// fields relevant to Technique are populated; the rest stay zero.
type PriceTable struct {
	Technique   Technique      `json:"technique"`
	Tiers       []QuantityTier `json:"tiers"`
	MinQuantity int            `json:"min_quantity"`

	// Screen printing.
	ColorCounts []int         `json:"color_counts,omitempty"`
	LightMatrix PriceMatrix   `json:"light_matrix,omitempty"`
	DarkMatrix  PriceMatrix   `json:"dark_matrix,omitempty"`
	FeePerColor float64       `json:"fee_per_color,omitempty"`
	Options     []PrintOption `json:"options,omitempty"`

	// Embroidery.
	SmallStitchRanges          []StitchRange `json:"small_stitch_ranges,omitempty"`
	LargeStitchRanges          []StitchRange `json:"large_stitch_ranges,omitempty"`
	SmallMatrix                PriceMatrix   `json:"small_matrix,omitempty"`
	LargeMatrix                PriceMatrix   `json:"large_matrix,omitempty"`
	FeeSmallDigitization       float64       `json:"fee_small_digitization,omitempty"`
	FeeLargeDigitization       float64       `json:"fee_large_digitization,omitempty"`
	SmallDigitizationThreshold int           `json:"small_digitization_threshold,omitempty"`

	// DTF.
	Dimensions []string    `json:"dimensions,omitempty"`
	DTFMatrix  PriceMatrix `json:"dtf_matrix,omitempty"`
}

// OptionByID returns the screen-print option with the given id.
func (t PriceTable) OptionByID(id string) (PrintOption, bool) {
	for _, opt := range t.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return PrintOption{}, false
}

// toneMatrix returns the screen-print matrix for the substrate tone.
func (t PriceTable) toneMatrix(tone SubstrateTone) (PriceMatrix, error) {
	switch tone {
	case ToneLight:
		return t.LightMatrix, nil
	case ToneDark:
		return t.DarkMatrix, nil
	}
	return nil, fmt.Errorf("unknown substrate tone %q", tone)
}

// stitchConfig returns the stitch ranges and matrix for the embroidery size.
func (t PriceTable) stitchConfig(size EmbroiderySize) ([]StitchRange, PriceMatrix, error) {
	switch size {
	case EmbroiderySmall:
		return t.SmallStitchRanges, t.SmallMatrix, nil
	case EmbroideryLarge:
		return t.LargeStitchRanges, t.LargeMatrix, nil
	}
	return nil, nil, fmt.Errorf("unknown embroidery size %q", size)
}
