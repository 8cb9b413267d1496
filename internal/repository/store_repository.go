package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartbasket/internal/domain"
)

var (
	ErrStoreNotFound = errors.New("store not found")
)

// StoreRepository reads the static store reference data the geo index is
// built from. Stores are seeded by migration and immutable at runtime.
type StoreRepository interface {
	List(ctx context.Context) ([]domain.Store, error)
	FindByID(ctx context.Context, id string) (*domain.Store, error)
}

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new instance of StoreRepository
func NewStoreRepository(db *sql.DB) StoreRepository {
	return &storeRepository{db: db}
}

// List retrieves all stores in registry order
func (r *storeRepository) List(ctx context.Context) ([]domain.Store, error) {
	query := `
		SELECT id, name, latitude, longitude, address
		FROM stores
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []domain.Store{}
	for rows.Next() {
		var store domain.Store
		err := rows.Scan(
			&store.ID,
			&store.Name,
			&store.Latitude,
			&store.Longitude,
			&store.Address,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

// FindByID retrieves a single store
func (r *storeRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	query := `
		SELECT id, name, latitude, longitude, address
		FROM stores
		WHERE id = $1
	`

	store := &domain.Store{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&store.ID,
		&store.Name,
		&store.Latitude,
		&store.Longitude,
		&store.Address,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store by ID: %w", err)
	}

	return store, nil
}
