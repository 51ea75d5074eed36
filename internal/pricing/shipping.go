package pricing

import "strings"

// ProductClass groups products by carton capacity.
type ProductClass string

const (
	ClassTShirt  ProductClass = "tshirt"
	ClassSweat   ProductClass = "sweat"
	ClassToteBag ProductClass = "totebag"
)

// Carton capacities per product class. Unrecognized products fall into the
// t-shirt class.
const (
	CapacityTShirt  = 80
	CapacitySweat   = 30
	CapacityToteBag = 200
)

// DeliveryMode enumerates how a quote is delivered.
type DeliveryMode string

const (
	DeliveryPickup        DeliveryMode = "pickup"
	DeliveryClientCarrier DeliveryMode = "client_carrier"
	DeliveryParcel        DeliveryMode = "parcel"
	DeliveryCourier       DeliveryMode = "courier"
)

// ProductQuantity is one product line as seen by the shipping estimator.
type ProductQuantity struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// DistanceFunc resolves a delivery address to a distance in kilometers.
// It is an external collaborator; any failure makes courier shipping fall
// back to the configured minimum fee.
type DistanceFunc func(address string) (float64, error)

// ClassifyProduct assigns a product line to a carton class. The category is
// authoritative when present; otherwise the product name is inspected.
func ClassifyProduct(category, name string) ProductClass {
	if class, ok := matchClass(category); ok {
		return class
	}
	if class, ok := matchClass(name); ok {
		return class
	}
	return ClassTShirt
}

func matchClass(s string) (ProductClass, bool) {
	s = strings.ToLower(s)
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "sweat") || strings.Contains(s, "hoodie"):
		return ClassSweat, true
	case strings.Contains(s, "tote") || strings.Contains(s, "bag"):
		return ClassToteBag, true
	case strings.Contains(s, "t-shirt") || strings.Contains(s, "tshirt") || strings.Contains(s, "tee"):
		return ClassTShirt, true
	}
	return "", false
}

func classCapacity(class ProductClass) int {
	switch class {
	case ClassSweat:
		return CapacitySweat
	case ClassToteBag:
		return CapacityToteBag
	}
	return CapacityTShirt
}

// CartonsRequired computes the carton count for the quote. Cartons are not
// shared across classes: a partially filled t-shirt carton and a partially
// filled sweat carton both count fully.
func CartonsRequired(items []ProductQuantity) int {
	perClass := map[ProductClass]int{}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		perClass[ClassifyProduct(item.Category, item.Name)] += item.Quantity
	}

	cartons := 0
	for class, quantity := range perClass {
		capacity := classCapacity(class)
		cartons += (quantity + capacity - 1) / capacity
	}
	return cartons
}

// ShippingCost computes the shipping charge for the delivery mode. Parcel
// delivery charges per carton; courier delivery charges by distance with a
// minimum fee, and falls back to that minimum when the distance collaborator
// fails or is absent. Pickup and client-arranged carriers cost nothing.
func ShippingCost(items []ProductQuantity, mode DeliveryMode, address string, cfg Config, distance DistanceFunc) float64 {
	switch mode {
	case DeliveryPickup, DeliveryClientCarrier:
		return 0
	case DeliveryParcel:
		return float64(CartonsRequired(items)) * cfg.ParcelPerCarton
	case DeliveryCourier:
		if distance == nil {
			return cfg.CourierMinimum
		}
		km, err := distance(address)
		if err != nil || km <= 0 {
			return cfg.CourierMinimum
		}
		cost := km * cfg.CourierPerKm
		if cost < cfg.CourierMinimum {
			return cfg.CourierMinimum
		}
		return cost
	}
	return 0
}
