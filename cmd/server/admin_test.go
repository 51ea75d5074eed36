package main

import (
	"net/http"
	"testing"

	"github.com/atelierpress/devis/internal/pricing"
)

func adminLogin(t *testing.T, srv *server) *http.Cookie {
	t.Helper()

	rr := doJSON(t, srv.routes(), http.MethodPost, "/login", map[string]any{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}

	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("login response did not set a session cookie")
	return nil
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv.routes(), http.MethodPost, "/login", map[string]any{
		"email":    testAdminEmail,
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}

	rr = doJSON(t, srv.routes(), http.MethodPost, "/login", map[string]any{
		"email":    "nobody@example.com",
		"password": testAdminPassword,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for unknown user, got %d", rr.Code)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv.routes(), http.MethodGet, "/api/admin/pricing-config", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without session, got %d", rr.Code)
	}

	forged := &http.Cookie{Name: sessionCookieName, Value: "YWRtaW4.deadbeef"}
	rr = doJSON(t, srv.routes(), http.MethodGet, "/api/admin/pricing-config", nil, forged)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with forged session, got %d", rr.Code)
	}

	cookie := adminLogin(t, srv)
	rr = doJSON(t, srv.routes(), http.MethodGet, "/api/admin/pricing-config", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 with session, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAdminPricingConfigRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	cookie := adminLogin(t, srv)

	update := map[string]any{
		"discount_percent":    10,
		"indexation_percent":  5,
		"packaging_per_piece": 0.50,
		"carton_price":        3.00,
		"vectorization_price": 20,
		"parcel_per_carton":   11.50,
		"courier_per_km":      2.00,
		"courier_minimum":     30,
	}
	rr := doJSON(t, srv.routes(), http.MethodPut, "/api/admin/pricing-config", update, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv.routes(), http.MethodGet, "/api/admin/pricing-config", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	cfg := decodeBody[pricing.Config](t, rr)
	if cfg.DiscountPercent != 10 || cfg.CourierMinimum != 30 {
		t.Fatalf("unexpected config after update: %+v", cfg)
	}
}

func TestAdminPricingConfigRejectsOutOfRangePercent(t *testing.T) {
	srv := newTestServer(t)
	cookie := adminLogin(t, srv)

	rr := doJSON(t, srv.routes(), http.MethodPut, "/api/admin/pricing-config", map[string]any{
		"discount_percent": 120,
	}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestAdminPriceTableGet(t *testing.T) {
	srv := newTestServer(t)
	cookie := adminLogin(t, srv)

	rr := doJSON(t, srv.routes(), http.MethodGet, "/api/admin/price-tables/screen_print", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	table := decodeBody[pricing.PriceTable](t, rr)
	if table.Technique != pricing.TechniqueScreenPrint {
		t.Fatalf("expected screen_print table, got %s", table.Technique)
	}
	if len(table.Tiers) == 0 || len(table.LightMatrix) == 0 {
		t.Fatalf("expected seeded tiers and light matrix, got %+v", table)
	}

	rr = doJSON(t, srv.routes(), http.MethodGet, "/api/admin/price-tables/laser", nil, cookie)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown technique, got %d", rr.Code)
	}
}

func TestAdminPriceEntryUpsertVisibleToNextPricing(t *testing.T) {
	srv := newTestServer(t)
	cookie := adminLogin(t, srv)
	router := srv.routes()

	// Warm the snapshot cache so the test proves invalidation, not a cold read.
	if _, err := srv.provider.Snapshot(); err != nil {
		t.Fatalf("failed to warm snapshot: %v", err)
	}

	rr := doJSON(t, router, http.MethodPut, "/api/admin/price-tables/screen_print/entries", map[string]any{
		"matrix":      "light",
		"tier_label":  "1-10",
		"color_count": 2,
		"unit_price":  9.00,
	}, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	priced := doJSON(t, router, http.MethodPost, "/api/quote/price", screenPrintQuoteRequest())
	totals := decodeBody[pricing.QuoteTotal](t, priced)
	if totals.Breakdowns[0].Breakdown.UnitPrice != 9.00 {
		t.Fatalf("expected updated unit price 9.00, got %.2f", totals.Breakdowns[0].Breakdown.UnitPrice)
	}
}

func TestAdminPriceEntryDeleteMakesCellUnavailable(t *testing.T) {
	srv := newTestServer(t)
	cookie := adminLogin(t, srv)
	router := srv.routes()

	entry := map[string]any{
		"matrix":      "light",
		"tier_label":  "1-10",
		"color_count": 2,
	}
	rr := doJSON(t, router, http.MethodDelete, "/api/admin/price-tables/screen_print/entries", entry, cookie)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rr.Code, rr.Body.String())
	}

	// Deleting again finds nothing.
	rr = doJSON(t, router, http.MethodDelete, "/api/admin/price-tables/screen_print/entries", entry, cookie)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second delete, got %d", rr.Code)
	}

	priced := doJSON(t, router, http.MethodPost, "/api/quote/price", screenPrintQuoteRequest())
	totals := decodeBody[pricing.QuoteTotal](t, priced)
	if totals.Breakdowns[0].Available {
		t.Fatalf("expected deleted cell to price as unavailable")
	}
}

func TestAdminPriceEntryRejectsMismatchedMatrix(t *testing.T) {
	srv := newTestServer(t)
	cookie := adminLogin(t, srv)

	rr := doJSON(t, srv.routes(), http.MethodPut, "/api/admin/price-tables/embroidery/entries", map[string]any{
		"matrix":      "light",
		"tier_label":  "1-10",
		"color_count": 2,
		"unit_price":  5.00,
	}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for matrix/technique mismatch, got %d", rr.Code)
	}

	rr = doJSON(t, srv.routes(), http.MethodPut, "/api/admin/price-tables/screen_print/entries", map[string]any{
		"matrix":     "light",
		"tier_label": "1-10",
		"unit_price": 5.00,
	}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing color count, got %d", rr.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newTestServer(t)
	cookie := adminLogin(t, srv)

	rr := doJSON(t, srv.routes(), http.MethodPost, "/logout", nil, cookie)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}

	var cleared *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatalf("expected expired session cookie, got %+v", cleared)
	}
}
