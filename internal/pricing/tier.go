package pricing

// ResolveTier scans tiers in ascending Min order and returns the first tier
// containing quantity. A miss means the table is malformed (tiers are
// expected contiguous with an unbounded tail); callers surface it as an
// unavailable result rather than a fault so one bad item cannot sink a
// whole quote.
func ResolveTier(quantity int, tiers []QuantityTier) (QuantityTier, bool) {
	for _, tier := range tiers {
		if tier.Contains(quantity) {
			return tier, true
		}
	}
	return QuantityTier{}, false
}

// minQuantityForKey scans tiers in ascending Min order and returns the
// smallest tier minimum at which matrix has a configured price for the
// same axis value (keyFor builds the matrix key per tier). This is what
// lets the caller say "order N more pieces to unlock this selection".
// Returns 0 when no tier has a configured price at all.
func minQuantityForKey(tiers []QuantityTier, matrix PriceMatrix, keyFor func(tierLabel string) string) int {
	for _, tier := range tiers {
		if _, ok := matrix.Lookup(keyFor(tier.Label)); ok {
			min := tier.Min
			if min < 1 {
				min = 1
			}
			return min
		}
	}
	return 0
}
