package geo

import (
	"errors"
	"math"
	"sort"

	"smartbasket/internal/domain"
)

var (
	ErrInvalidCoordinates = errors.New("latitude, longitude and max distance must be finite numbers")
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// StoreIndex answers nearby-store queries over a fixed set of store
// locations. The store slice is treated as immutable after construction,
// so the index is safe for concurrent readers.
type StoreIndex struct {
	stores []domain.Store
}

// NewStoreIndex creates an index over the given stores. The slice is
// copied; callers may reuse theirs.
func NewStoreIndex(stores []domain.Store) *StoreIndex {
	idx := &StoreIndex{stores: make([]domain.Store, len(stores))}
	copy(idx.stores, stores)
	return idx
}

// Stores returns the catalog of known stores in registry order.
func (idx *StoreIndex) Stores() []domain.Store {
	out := make([]domain.Store, len(idx.stores))
	copy(out, idx.stores)
	return out
}

// FindNearby returns every store within maxDistanceKm of the given point,
// nearest first. Ties keep registry order. Non-finite inputs are rejected
// with ErrInvalidCoordinates.
func (idx *StoreIndex) FindNearby(latitude, longitude, maxDistanceKm float64) ([]domain.NearbyStore, error) {
	if !isFinite(latitude) || !isFinite(longitude) || !isFinite(maxDistanceKm) {
		return nil, ErrInvalidCoordinates
	}

	nearby := []domain.NearbyStore{}
	for _, store := range idx.stores {
		d := DistanceKm(latitude, longitude, store.Latitude, store.Longitude)
		if d <= maxDistanceKm {
			nearby = append(nearby, domain.NearbyStore{Store: store, Distance: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})

	return nearby, nil
}

// DistanceKm computes the great-circle distance between two points using
// the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
