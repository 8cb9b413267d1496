package domain

// Store is static reference data describing a physical store location.
type Store struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Address   string  `json:"address" db:"address"`
}

// NearbyStore is a Store plus its computed distance from a query point.
// It is a derived projection and is never persisted.
type NearbyStore struct {
	Store
	Distance float64 `json:"distance"` // kilometres
}
