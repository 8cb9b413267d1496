package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smartbasket/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNoSaleOffer     = errors.New("product has no sale offer")
)

// ProductRepository is the crowd-sourced product/offer catalog. Offers
// are an append-only log per product; the current best sale offer is
// denormalized onto the product row so resolving never scans the log.
type ProductRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	GetOrCreate(ctx context.Context, name string) (*domain.Product, error)
	RecordOffer(ctx context.Context, productID uuid.UUID, offer *domain.Offer) (uuid.UUID, error)
	BestSaleOffer(ctx context.Context, productID uuid.UUID) (*domain.Offer, error)
	ListOffers(ctx context.Context, productID uuid.UUID) ([]*domain.Offer, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, best_on_sale, best_sale_price, best_regular_price, best_store_id, best_offer_updated_at, created_at`

// FindByName retrieves a product by its normalized name key
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE name_key = $1
	`, productColumns)

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, domain.NormalizeName(name)).Scan(
		&product.ID,
		&product.Name,
		&product.BestOnSale,
		&product.BestSalePrice,
		&product.BestRegularPrice,
		&product.BestStoreID,
		&product.BestOfferUpdatedAt,
		&product.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}

	return product, nil
}

// GetOrCreate returns the product with the given name, creating it if it
// does not exist. The unique constraint on name_key makes concurrent
// first contributions converge on a single row instead of racing.
func (r *productRepository) GetOrCreate(ctx context.Context, name string) (*domain.Product, error) {
	insert := `
		INSERT INTO products (id, name, name_key, best_on_sale, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (name_key) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, insert, uuid.New(), name, domain.NormalizeName(name), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return r.FindByName(ctx, name)
}

// RecordOffer appends an immutable offer and, in the same transaction,
// refreshes the product's denormalized best-offer columns when the new
// offer is on sale and at least ties the stored best. A tie goes to the
// newer offer (most recent updated_at wins).
func (r *productRepository) RecordOffer(ctx context.Context, productID uuid.UUID, offer *domain.Offer) (uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	offerID := uuid.New()
	now := time.Now()

	insert := `
		INSERT INTO offers (id, product_id, on_sale, regular_price, sale_price, store_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, insert,
		offerID,
		productID,
		offer.OnSale,
		offer.RegularPrice,
		offer.SalePrice,
		offer.StoreID,
		now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record offer: %w", err)
	}

	if offer.OnSale {
		update := `
			UPDATE products
			SET best_on_sale = TRUE,
			    best_sale_price = $2,
			    best_regular_price = $3,
			    best_store_id = $4,
			    best_offer_updated_at = $5
			WHERE id = $1
			  AND (NOT best_on_sale OR best_sale_price IS NULL OR $2 <= best_sale_price)
		`
		result, err := tx.ExecContext(ctx, update, productID, offer.SalePrice, offer.RegularPrice, offer.StoreID, now)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to update best offer: %w", err)
		}
		if _, err := result.RowsAffected(); err != nil {
			return uuid.Nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit offer: %w", err)
	}

	offer.ID = offerID
	offer.ProductID = productID
	offer.UpdatedAt = now
	return offerID, nil
}

// BestSaleOffer returns the product's current best on-sale offer from
// the denormalized columns. ErrNoSaleOffer when no sale offer exists.
func (r *productRepository) BestSaleOffer(ctx context.Context, productID uuid.UUID) (*domain.Offer, error) {
	query := `
		SELECT best_on_sale, best_sale_price, best_regular_price, best_store_id, best_offer_updated_at
		FROM products
		WHERE id = $1
	`

	var (
		onSale       bool
		salePrice    sql.NullFloat64
		regularPrice sql.NullFloat64
		storeID      sql.NullString
		updatedAt    sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&onSale, &salePrice, &regularPrice, &storeID, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find best sale offer: %w", err)
	}

	if !onSale || !salePrice.Valid {
		return nil, ErrNoSaleOffer
	}

	offer := &domain.Offer{
		ProductID: productID,
		OnSale:    true,
		SalePrice: salePrice.Float64,
		StoreID:   storeID.String,
	}
	if regularPrice.Valid {
		offer.RegularPrice = regularPrice.Float64
	}
	if updatedAt.Valid {
		offer.UpdatedAt = updatedAt.Time
	}

	return offer, nil
}

// ListOffers returns the full offer log for a product, newest first.
func (r *productRepository) ListOffers(ctx context.Context, productID uuid.UUID) ([]*domain.Offer, error) {
	query := `
		SELECT id, product_id, on_sale, regular_price, sale_price, store_id, updated_at
		FROM offers
		WHERE product_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []*domain.Offer{}
	for rows.Next() {
		offer := &domain.Offer{}
		err := rows.Scan(
			&offer.ID,
			&offer.ProductID,
			&offer.OnSale,
			&offer.RegularPrice,
			&offer.SalePrice,
			&offer.StoreID,
			&offer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}
