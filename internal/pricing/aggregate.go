package pricing

// QuoteExtras are the quote-level add-ons selected by the customer.
type QuoteExtras struct {
	Packaging  bool `json:"packaging"`
	NewCartons bool `json:"new_cartons"`
}

// ProductLine is one ERP-priced product line: the blank garment price before
// decoration.
type ProductLine struct {
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// QuoteTotal is the composed grand total with every part kept separate for
// display.
type QuoteTotal struct {
	ServicesTotal     float64       `json:"services_total"`
	ProductsTotal     float64       `json:"products_total"`
	ShippingCost      float64       `json:"shipping_cost"`
	PackagingCost     float64       `json:"packaging_cost"`
	CartonCost        float64       `json:"carton_cost"`
	VectorizationCost float64       `json:"vectorization_cost"`
	GrandTotal        float64       `json:"grand_total"`
	Breakdowns        []PriceResult `json:"breakdowns"`
	UnavailableCount  int           `json:"unavailable_count"`
}

// ProductsTotal prices the blank garments: per-unit indexation uplift
// followed by the textile discount, times quantity.
func ProductsTotal(lines []ProductLine, cfg Config) float64 {
	total := 0.0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		unit := line.UnitPrice * (1 + cfg.IndexationPercent/100) * (1 - cfg.DiscountPercent/100)
		total += unit * float64(line.Quantity)
	}
	return total
}

// AggregateQuote composes the grand total from independently computed parts.
// Each item's express surcharge is already embedded in its breakdown total
// and is never re-added here. Unavailable items contribute 0; blocking
// submission until every item prices is the caller's job.
func AggregateQuote(items []QuoteItem, results []PriceResult, products []ProductQuantity, productsTotal, shipping float64, extras QuoteExtras, cfg Config) QuoteTotal {
	total := QuoteTotal{
		ProductsTotal: productsTotal,
		ShippingCost:  shipping,
		Breakdowns:    results,
	}

	for _, result := range results {
		if !result.Available {
			total.UnavailableCount++
			continue
		}
		total.ServicesTotal += result.Breakdown.Total
	}

	totalPieces := 0
	for _, product := range products {
		if product.Quantity > 0 {
			totalPieces += product.Quantity
		}
	}
	if extras.Packaging {
		total.PackagingCost = float64(totalPieces) * cfg.PackagingPerPiece
	}
	if extras.NewCartons {
		total.CartonCost = float64(CartonsRequired(products)) * cfg.CartonPrice
	}

	for _, item := range items {
		if item.Vectorize {
			total.VectorizationCost += cfg.VectorizationPrice
		}
	}

	total.GrandTotal = total.ServicesTotal + total.ProductsTotal + total.ShippingCost +
		total.PackagingCost + total.CartonCost + total.VectorizationCost
	return total
}
