package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelierpress/devis/internal/pricing"
)

type quoteItemRequest struct {
	Technique        string  `json:"technique" validate:"required,oneof=screen_print embroidery dtf"`
	Quantity         int     `json:"quantity" validate:"required,gt=0"`
	ProductName      string  `json:"product_name"`
	ProductCategory  string  `json:"product_category"`
	ProductUnitPrice float64 `json:"product_unit_price" validate:"gte=0"`
	Vectorize        bool    `json:"vectorize"`

	// Screen printing.
	ColorCount        int      `json:"color_count,omitempty" validate:"gte=0"`
	Tone              string   `json:"tone,omitempty" validate:"omitempty,oneof=light dark"`
	SelectedOptionIDs []string `json:"selected_option_ids,omitempty"`

	// Embroidery.
	StitchCount int    `json:"stitch_count,omitempty" validate:"gte=0"`
	Size        string `json:"size,omitempty" validate:"omitempty,oneof=small large"`

	// DTF.
	Dimension string `json:"dimension,omitempty"`
}

type quoteRequest struct {
	Title           string             `json:"title"`
	Notes           string             `json:"notes"`
	Items           []quoteItemRequest `json:"items" validate:"required,min=1,dive"`
	Delay           pricing.Delay      `json:"delay"`
	DeliveryMode    string             `json:"delivery_mode" validate:"required,oneof=pickup client_carrier parcel courier"`
	DeliveryAddress string             `json:"delivery_address"`
	Packaging       bool               `json:"packaging"`
	NewCartons      bool               `json:"new_cartons"`
}

func (req quoteItemRequest) toQuoteItem() pricing.QuoteItem {
	item := pricing.QuoteItem{
		TotalQuantity:   req.Quantity,
		ProductName:     req.ProductName,
		ProductCategory: req.ProductCategory,
		Vectorize:       req.Vectorize,
	}
	switch pricing.Technique(req.Technique) {
	case pricing.TechniqueScreenPrint:
		item.Options = pricing.ScreenPrintOptions{
			ColorCount:        req.ColorCount,
			Tone:              pricing.SubstrateTone(req.Tone),
			SelectedOptionIDs: req.SelectedOptionIDs,
		}
	case pricing.TechniqueEmbroidery:
		item.Options = pricing.EmbroideryOptions{
			StitchCount: req.StitchCount,
			Size:        pricing.EmbroiderySize(req.Size),
		}
	case pricing.TechniqueDTF:
		item.Options = pricing.DTFOptions{Dimension: req.Dimension}
	}
	return item
}

// priceQuote runs the full pricing pass for a request against one snapshot.
// Items below the technique's minimum order quantity are reported as
// unavailable here; the calculator itself does not enforce the floor.
func (s *server) priceQuote(req quoteRequest) (pricing.QuoteTotal, error) {
	snapshot, err := s.provider.Snapshot()
	if err != nil {
		return pricing.QuoteTotal{}, fmt.Errorf("load price tables: %w", err)
	}

	items := make([]pricing.QuoteItem, 0, len(req.Items))
	results := make([]pricing.PriceResult, 0, len(req.Items))
	products := make([]pricing.ProductQuantity, 0, len(req.Items))
	lines := make([]pricing.ProductLine, 0, len(req.Items))

	for _, itemReq := range req.Items {
		item := itemReq.toQuoteItem()
		items = append(items, item)
		products = append(products, pricing.ProductQuantity{
			Category: itemReq.ProductCategory,
			Name:     itemReq.ProductName,
			Quantity: itemReq.Quantity,
		})
		lines = append(lines, pricing.ProductLine{
			UnitPrice: itemReq.ProductUnitPrice,
			Quantity:  itemReq.Quantity,
		})

		table, ok := snapshot.Table(pricing.Technique(itemReq.Technique))
		if !ok {
			results = append(results, pricing.PriceResult{
				Message: fmt.Sprintf("unsupported technique %s", itemReq.Technique),
			})
			continue
		}
		if itemReq.Quantity < table.MinQuantity {
			results = append(results, pricing.PriceResult{
				Message:     fmt.Sprintf("%s requires at least %d pieces", table.Technique, table.MinQuantity),
				MinQuantity: table.MinQuantity,
			})
			continue
		}
		results = append(results, pricing.PriceItem(item, table, req.Delay))
	}

	productsTotal := pricing.ProductsTotal(lines, snapshot.Config)
	shipping := pricing.ShippingCost(products, pricing.DeliveryMode(req.DeliveryMode), req.DeliveryAddress, snapshot.Config, s.distance)
	extras := pricing.QuoteExtras{Packaging: req.Packaging, NewCartons: req.NewCartons}

	return pricing.AggregateQuote(items, results, products, productsTotal, shipping, extras, snapshot.Config), nil
}

func (s *server) handleQuotePrice(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	totals, err := s.priceQuote(req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to price quote")
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

type quoteCreatedResponse struct {
	ID        int64              `json:"id"`
	Reference string             `json:"reference"`
	Totals    pricing.QuoteTotal `json:"totals"`
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	totals, err := s.priceQuote(req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to price quote")
		return
	}
	if totals.UnavailableCount > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, totals)
		return
	}

	id, reference, err := s.saveQuote(req, totals)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save quote")
		return
	}

	respondJSON(w, http.StatusCreated, quoteCreatedResponse{ID: id, Reference: reference, Totals: totals})
}

// saveQuote persists the quote with full JSON snapshots of the inputs and
// the computed totals. A stored quote is a record of what was offered; it is
// never re-priced when read back.
func (s *server) saveQuote(req quoteRequest, totals pricing.QuoteTotal) (int64, string, error) {
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return 0, "", fmt.Errorf("marshal quote items: %w", err)
	}
	breakdownsJSON, err := json.Marshal(totals.Breakdowns)
	if err != nil {
		return 0, "", fmt.Errorf("marshal breakdowns: %w", err)
	}
	summary := totals
	summary.Breakdowns = nil
	totalsJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, "", fmt.Errorf("marshal totals: %w", err)
	}

	reference := uuid.NewString()
	result, err := s.db.Exec(`
		INSERT INTO quotes (reference, title, notes, items_json, breakdowns_json, totals_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, reference, req.Title, req.Notes, string(itemsJSON), string(breakdownsJSON), string(totalsJSON))
	if err != nil {
		return 0, "", fmt.Errorf("insert quote: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, "", fmt.Errorf("insert quote: %w", err)
	}
	return id, reference, nil
}

type quoteListItem struct {
	ID        int64   `json:"id"`
	Reference string  `json:"reference"`
	CreatedAt string  `json:"created_at"`
	Title     string  `json:"title"`
	Total     float64 `json:"total"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load quotes")
		return
	}
	respondJSON(w, http.StatusOK, quotes)
}

func (s *server) listQuotes(query string) ([]quoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			id,
			reference,
			created_at,
			COALESCE(title, ''),
			totals_json
		FROM quotes
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quoteListItem, 0)
	for rows.Next() {
		var item quoteListItem
		var totalsJSON string
		if err := rows.Scan(&item.ID, &item.Reference, &item.CreatedAt, &item.Title, &totalsJSON); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		item.Total = extractTotalFromJSON(totalsJSON)
		quotes = append(quotes, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

func extractTotalFromJSON(totalsJSON string) float64 {
	var values map[string]float64
	if err := json.Unmarshal([]byte(totalsJSON), &values); err != nil {
		return 0
	}
	for _, key := range []string{"grand_total", "total"} {
		if total, ok := values[key]; ok {
			return total
		}
	}
	return 0
}

type quoteDetailResponse struct {
	ID         int64           `json:"id"`
	Reference  string          `json:"reference"`
	CreatedAt  string          `json:"created_at"`
	Title      string          `json:"title"`
	Notes      string          `json:"notes"`
	Items      json.RawMessage `json:"items"`
	Breakdowns json.RawMessage `json:"breakdowns"`
	Totals     json.RawMessage `json:"totals"`
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid quote id")
		return
	}

	var detail quoteDetailResponse
	var itemsJSON, breakdownsJSON, totalsJSON string
	err = s.db.QueryRow(`
		SELECT id, reference, created_at, COALESCE(title, ''), COALESCE(notes, ''),
		       items_json, breakdowns_json, totals_json
		FROM quotes
		WHERE id = ?
	`, id).Scan(&detail.ID, &detail.Reference, &detail.CreatedAt, &detail.Title, &detail.Notes,
		&itemsJSON, &breakdownsJSON, &totalsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "quote not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load quote")
		return
	}

	detail.Items = json.RawMessage(itemsJSON)
	detail.Breakdowns = json.RawMessage(breakdownsJSON)
	detail.Totals = json.RawMessage(totalsJSON)
	respondJSON(w, http.StatusOK, detail)
}

func validationMessage(err error) string {
	return "invalid request: " + err.Error()
}
