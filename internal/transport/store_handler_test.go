package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartbasket/internal/domain"
	"smartbasket/internal/geo"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newStoreTestRouter() *chi.Mux {
	index := geo.NewStoreIndex([]domain.Store{
		{ID: "market-cmh", Name: "The Market at CMH", Latitude: 43.4702203, Longitude: -80.5383823},
		{ID: "lazaridis-hall", Name: "Lazaridis Hall", Latitude: 43.4750999, Longitude: -80.5320229},
		{ID: "walmart-boardwalk", Name: "Walmart the Boardwalk", Latitude: 43.4330164, Longitude: -80.5607798},
	})

	router := chi.NewRouter()
	handler := NewStoreHandler(index, zap.NewNop())
	handler.RegisterRoutes(router)
	return router
}

func TestStoreHandler_Nearby(t *testing.T) {
	router := newStoreTestRouter()

	t.Run("returns stores closest first within radius", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stores/nearby?lat=43.4702&lon=-80.5384&max_km=2", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}

		var stores []domain.NearbyStore
		if err := json.NewDecoder(rec.Body).Decode(&stores); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(stores) != 2 {
			t.Fatalf("got %d stores, want 2 within 2km", len(stores))
		}
		if stores[0].ID != "market-cmh" || stores[1].ID != "lazaridis-hall" {
			t.Errorf("order = %s, %s, want closest first", stores[0].ID, stores[1].ID)
		}
		if stores[0].Distance > stores[1].Distance {
			t.Errorf("distances not ascending: %f, %f", stores[0].Distance, stores[1].Distance)
		}
	})

	t.Run("missing coordinates is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stores/nearby", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed max_km is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stores/nearby?lat=43.47&lon=-80.54&max_km=near", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("radius defaults when max_km omitted", func(t *testing.T) {
		target := fmt.Sprintf("/api/stores/nearby?lat=%f&lon=%f", 43.4702203, -80.5383823)
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var stores []domain.NearbyStore
		if err := json.NewDecoder(rec.Body).Decode(&stores); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		// All three fixtures are within the 10km default.
		if len(stores) != 3 {
			t.Errorf("got %d stores, want all 3 within default radius", len(stores))
		}
	})
}
