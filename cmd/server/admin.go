package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelierpress/devis/internal/pricing"
	"github.com/atelierpress/devis/internal/tables"
)

type pricingConfigRequest struct {
	DiscountPercent    float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	IndexationPercent  float64 `json:"indexation_percent" validate:"gte=0,lte=100"`
	PackagingPerPiece  float64 `json:"packaging_per_piece" validate:"gte=0"`
	CartonPrice        float64 `json:"carton_price" validate:"gte=0"`
	VectorizationPrice float64 `json:"vectorization_price" validate:"gte=0"`
	ParcelPerCarton    float64 `json:"parcel_per_carton" validate:"gte=0"`
	CourierPerKm       float64 `json:"courier_per_km" validate:"gte=0"`
	CourierMinimum     float64 `json:"courier_minimum" validate:"gte=0"`
}

func (s *server) handleAdminPricingConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.PricingConfig()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load pricing config")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *server) handleAdminPricingConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req pricingConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	cfg := pricing.Config{
		DiscountPercent:    req.DiscountPercent,
		IndexationPercent:  req.IndexationPercent,
		PackagingPerPiece:  req.PackagingPerPiece,
		CartonPrice:        req.CartonPrice,
		VectorizationPrice: req.VectorizationPrice,
		ParcelPerCarton:    req.ParcelPerCarton,
		CourierPerKm:       req.CourierPerKm,
		CourierMinimum:     req.CourierMinimum,
	}
	if err := s.store.UpdatePricingConfig(cfg); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save pricing config")
		return
	}
	s.provider.Invalidate()
	respondJSON(w, http.StatusOK, cfg)
}

func (s *server) handleAdminPriceTableGet(w http.ResponseWriter, r *http.Request) {
	technique := pricing.Technique(chi.URLParam(r, "technique"))
	if !technique.Valid() {
		respondError(w, http.StatusNotFound, "unknown technique")
		return
	}

	table, err := s.store.PriceTable(technique)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load price table")
		return
	}
	respondJSON(w, http.StatusOK, table)
}

type priceEntryRequest struct {
	Matrix    string `json:"matrix" validate:"required,oneof=light dark small large dtf"`
	TierLabel string `json:"tier_label" validate:"required"`

	// One axis value, depending on the matrix.
	ColorCount  int    `json:"color_count,omitempty"`
	StitchRange string `json:"stitch_range,omitempty"`
	Dimension   string `json:"dimension,omitempty"`

	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// entryKey builds the matrix key for the entry through the same builders the
// calculator reads with.
func (req priceEntryRequest) entryKey(technique pricing.Technique) (string, error) {
	switch req.Matrix {
	case tables.MatrixLight, tables.MatrixDark:
		if technique != pricing.TechniqueScreenPrint {
			return "", fmt.Errorf("matrix %s belongs to screen printing", req.Matrix)
		}
		if req.ColorCount <= 0 {
			return "", fmt.Errorf("color_count is required for the %s matrix", req.Matrix)
		}
		return pricing.ColorKey(req.TierLabel, req.ColorCount), nil
	case tables.MatrixSmall, tables.MatrixLarge:
		if technique != pricing.TechniqueEmbroidery {
			return "", fmt.Errorf("matrix %s belongs to embroidery", req.Matrix)
		}
		if req.StitchRange == "" {
			return "", fmt.Errorf("stitch_range is required for the %s matrix", req.Matrix)
		}
		return pricing.StitchKey(req.TierLabel, req.StitchRange), nil
	case tables.MatrixDTF:
		if technique != pricing.TechniqueDTF {
			return "", fmt.Errorf("matrix %s belongs to DTF transfer", req.Matrix)
		}
		if req.Dimension == "" {
			return "", fmt.Errorf("dimension is required for the %s matrix", req.Matrix)
		}
		return pricing.DimensionKey(req.TierLabel, req.Dimension), nil
	}
	return "", fmt.Errorf("unknown matrix %q", req.Matrix)
}

func (s *server) handleAdminPriceEntryUpsert(w http.ResponseWriter, r *http.Request) {
	technique := pricing.Technique(chi.URLParam(r, "technique"))
	if !technique.Valid() {
		respondError(w, http.StatusNotFound, "unknown technique")
		return
	}

	var req priceEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	key, err := req.entryKey(technique)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpsertPriceEntry(technique, req.Matrix, key, req.UnitPrice); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save price entry")
		return
	}
	s.provider.Invalidate()
	respondJSON(w, http.StatusOK, map[string]any{
		"matrix":     req.Matrix,
		"entry_key":  key,
		"unit_price": req.UnitPrice,
	})
}

func (s *server) handleAdminPriceEntryDelete(w http.ResponseWriter, r *http.Request) {
	technique := pricing.Technique(chi.URLParam(r, "technique"))
	if !technique.Valid() {
		respondError(w, http.StatusNotFound, "unknown technique")
		return
	}

	var req priceEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	key, err := req.entryKey(technique)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := s.store.DeletePriceEntry(technique, req.Matrix, key)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete price entry")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "price entry not found")
		return
	}
	s.provider.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
