package pricing

// Config holds the global pricing knobs. It is read-only to the engine:
// the storage layer assembles a snapshot and passes it into each call.
type Config struct {
	DiscountPercent    float64 `json:"discount_percent"`
	IndexationPercent  float64 `json:"indexation_percent"`
	PackagingPerPiece  float64 `json:"packaging_per_piece"`
	CartonPrice        float64 `json:"carton_price"`
	VectorizationPrice float64 `json:"vectorization_price"`
	ParcelPerCarton    float64 `json:"parcel_per_carton"`
	CourierPerKm       float64 `json:"courier_per_km"`
	CourierMinimum     float64 `json:"courier_minimum"`
}
