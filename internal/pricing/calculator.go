package pricing

import "fmt"

// Breakdown is the fully itemized price of one quote item. Every
// intermediate field is retained because the presentation layer itemizes
// them verbatim.
type Breakdown struct {
	UnitPrice        float64 `json:"unit_price"`
	Quantity         int     `json:"quantity"`
	FixedFees        float64 `json:"fixed_fees"`
	OptionsSurcharge float64 `json:"options_surcharge"`
	ExpressSurcharge float64 `json:"express_surcharge"`
	Total            float64 `json:"total"`
}

// PriceResult is either a successful Breakdown or an unavailable variant.
// Unavailable is a distinguishable state, never a zero total: callers use
// it to block checkout and show the minimum quantity that would unlock
// pricing (MinQuantity == 0 when no quantity unlocks it).
type PriceResult struct {
	Available   bool      `json:"available"`
	Breakdown   Breakdown `json:"breakdown,omitempty"`
	Message     string    `json:"message,omitempty"`
	MinQuantity int       `json:"min_quantity,omitempty"`
}

func unavailable(message string, minQuantity int) PriceResult {
	return PriceResult{Message: message, MinQuantity: minQuantity}
}

// PriceItem produces the price breakdown for one quote item against the
// technique's price table. The composition order is fixed and matters:
// tier lookup, axis lookup, fixed fees, base subtotal, option surcharges
// (summed, applied once), then the express surcharge on the resulting
// subtotal.
func PriceItem(item QuoteItem, table PriceTable, delay Delay) PriceResult {
	if item.TotalQuantity <= 0 {
		return unavailable("nothing to price: quantity must be at least 1", 0)
	}
	if item.Options == nil {
		return unavailable("technique selection is incomplete", 0)
	}
	if item.Options.Technique() != table.Technique {
		return unavailable(fmt.Sprintf("price table for %s cannot price a %s item", table.Technique, item.Options.Technique()), 0)
	}

	tier, ok := ResolveTier(item.TotalQuantity, table.Tiers)
	if !ok {
		return unavailable(fmt.Sprintf("no quantity tier covers %d pieces for %s", item.TotalQuantity, table.Technique), 0)
	}

	var (
		unitPrice float64
		fixedFees float64
	)
	switch opts := item.Options.(type) {
	case ScreenPrintOptions:
		if opts.ColorCount <= 0 {
			return unavailable("screen printing requires a color count", 0)
		}
		matrix, err := table.toneMatrix(opts.Tone)
		if err != nil {
			return unavailable("screen printing requires a light or dark substrate tone", 0)
		}
		price, configured := matrix.Lookup(ColorKey(tier.Label, opts.ColorCount))
		if !configured {
			min := minQuantityForKey(table.Tiers, matrix, func(label string) string {
				return ColorKey(label, opts.ColorCount)
			})
			return unavailable(fmt.Sprintf("screen printing with %d colors is not available for %d pieces", opts.ColorCount, item.TotalQuantity), min)
		}
		unitPrice = price
		fixedFees = table.FeePerColor * float64(opts.ColorCount)

	case EmbroideryOptions:
		if opts.StitchCount <= 0 {
			return unavailable("embroidery requires a stitch count", 0)
		}
		ranges, matrix, err := table.stitchConfig(opts.Size)
		if err != nil {
			return unavailable("embroidery requires a small or large size", 0)
		}
		stitchRange, found := resolveStitchRange(opts.StitchCount, ranges)
		if !found {
			return unavailable(fmt.Sprintf("no %s embroidery price covers %d stitches", opts.Size, opts.StitchCount), 0)
		}
		price, configured := matrix.Lookup(StitchKey(tier.Label, stitchRange.Label))
		if !configured {
			min := minQuantityForKey(table.Tiers, matrix, func(label string) string {
				return StitchKey(label, stitchRange.Label)
			})
			return unavailable(fmt.Sprintf("%s embroidery at %d stitches is not available for %d pieces", opts.Size, opts.StitchCount, item.TotalQuantity), min)
		}
		unitPrice = price
		if opts.StitchCount <= table.SmallDigitizationThreshold {
			fixedFees = table.FeeSmallDigitization
		} else {
			fixedFees = table.FeeLargeDigitization
		}

	case DTFOptions:
		if opts.Dimension == "" {
			return unavailable("DTF transfer requires a print dimension", 0)
		}
		price, configured := table.DTFMatrix.Lookup(DimensionKey(tier.Label, opts.Dimension))
		if !configured {
			min := minQuantityForKey(table.Tiers, table.DTFMatrix, func(label string) string {
				return DimensionKey(label, opts.Dimension)
			})
			return unavailable(fmt.Sprintf("DTF transfer in %s is not available for %d pieces", opts.Dimension, item.TotalQuantity), min)
		}
		unitPrice = price

	default:
		return unavailable(fmt.Sprintf("unsupported technique %s", item.Options.Technique()), 0)
	}

	base := unitPrice*float64(item.TotalQuantity) + fixedFees

	optionsSurcharge := 0.0
	if opts, ok := item.Options.(ScreenPrintOptions); ok {
		// Option percentages are summed, then applied to the base once.
		// They never compound multiplicatively.
		totalOptionPercent := 0.0
		for _, id := range opts.SelectedOptionIDs {
			if option, found := table.OptionByID(id); found {
				totalOptionPercent += option.SurchargePercent
			}
		}
		optionsSurcharge = base * totalOptionPercent / 100
	}

	baseTotal := base + optionsSurcharge
	expressSurcharge := baseTotal * delay.ExpressSurchargePercent() / 100

	return PriceResult{
		Available: true,
		Breakdown: Breakdown{
			UnitPrice:        unitPrice,
			Quantity:         item.TotalQuantity,
			FixedFees:        fixedFees,
			OptionsSurcharge: optionsSurcharge,
			ExpressSurcharge: expressSurcharge,
			Total:            baseTotal + expressSurcharge,
		},
	}
}

func resolveStitchRange(stitchCount int, ranges []StitchRange) (StitchRange, bool) {
	for _, r := range ranges {
		if r.Contains(stitchCount) {
			return r, true
		}
	}
	return StitchRange{}, false
}
