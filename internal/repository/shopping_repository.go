package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartbasket/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound = errors.New("shopping list item not found")
)

// PriceUpdate is one staged price/store/sale change for a list item.
type PriceUpdate struct {
	ItemID   uuid.UUID
	Resolved domain.ResolvedPrice
}

// ShoppingListRepository owns a user's shopping-list rows. Items are
// single-owner (per user); batch price updates are applied in one
// transaction so a concurrently reading client never observes a
// half-updated list.
type ShoppingListRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingListItem, error)
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.ShoppingListItem, error)
	Insert(ctx context.Context, item *domain.ShoppingListItem) error
	SetChecked(ctx context.Context, userID, itemID uuid.UUID, checked bool) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	BatchUpdatePrices(ctx context.Context, userID uuid.UUID, updates []PriceUpdate) error
	UsersWithItemName(ctx context.Context, itemName string) ([]uuid.UUID, error)
}

type shoppingListRepository struct {
	db *sql.DB
}

// NewShoppingListRepository creates a new instance of ShoppingListRepository
func NewShoppingListRepository(db *sql.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

const itemColumns = `id, user_id, item_name, checked, on_sale, store_id, price, source_icon_url, added_at`

// ListByUser retrieves all of a user's shopping-list items, newest first
func (r *shoppingListRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingListItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM shopping_list_items
		WHERE user_id = $1
		ORDER BY added_at DESC
	`, itemColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}
	defer rows.Close()

	items := []*domain.ShoppingListItem{}
	for rows.Next() {
		item := &domain.ShoppingListItem{}
		if err := scanItem(rows, item); err != nil {
			return nil, fmt.Errorf("failed to scan shopping item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shopping items: %w", err)
	}

	return items, nil
}

// FindByID retrieves one item, scoped to its owning user
func (r *shoppingListRepository) FindByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.ShoppingListItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM shopping_list_items
		WHERE id = $1 AND user_id = $2
	`, itemColumns)

	item := &domain.ShoppingListItem{}
	err := scanItem(r.db.QueryRowContext(ctx, query, itemID, userID), item)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find shopping item: %w", err)
	}

	return item, nil
}

// Insert adds a new item to the owner's list
func (r *shoppingListRepository) Insert(ctx context.Context, item *domain.ShoppingListItem) error {
	query := `
		INSERT INTO shopping_list_items (id, user_id, item_name, checked, on_sale, store_id, price, source_icon_url, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ItemName,
		item.Checked,
		item.OnSale,
		item.StoreID,
		item.Price,
		item.SourceIconURL,
		item.AddedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert shopping item: %w", err)
	}

	return nil
}

// SetChecked toggles the user-facing checked flag
func (r *shoppingListRepository) SetChecked(ctx context.Context, userID, itemID uuid.UUID, checked bool) error {
	query := `
		UPDATE shopping_list_items
		SET checked = $3
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, itemID, userID, checked)
	if err != nil {
		return fmt.Errorf("failed to update shopping item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Delete removes an item from the owner's list
func (r *shoppingListRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	query := `DELETE FROM shopping_list_items WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete shopping item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// BatchUpdatePrices applies all staged price updates for one user's list
// in a single transaction: either every row changes or none do.
func (r *shoppingListRepository) BatchUpdatePrices(ctx context.Context, userID uuid.UUID, updates []PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE shopping_list_items
		SET price = $3, store_id = $4, on_sale = $5
		WHERE id = $1 AND user_id = $2
	`

	for _, u := range updates {
		result, err := tx.ExecContext(ctx, query, u.ItemID, userID, u.Resolved.Price, u.Resolved.StoreID, u.Resolved.OnSale)
		if err != nil {
			return fmt.Errorf("failed to update item price: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrItemNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price updates: %w", err)
	}

	return nil
}

// UsersWithItemName finds every user whose list contains an item whose
// normalized name matches the given product name.
func (r *shoppingListRepository) UsersWithItemName(ctx context.Context, itemName string) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id
		FROM shopping_list_items
		WHERE lower(trim(item_name)) = $1
	`

	rows, err := r.db.QueryContext(ctx, query, domain.NormalizeName(itemName))
	if err != nil {
		return nil, fmt.Errorf("failed to find users by item name: %w", err)
	}
	defer rows.Close()

	userIDs := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, item *domain.ShoppingListItem) error {
	return row.Scan(
		&item.ID,
		&item.UserID,
		&item.ItemName,
		&item.Checked,
		&item.OnSale,
		&item.StoreID,
		&item.Price,
		&item.SourceIconURL,
		&item.AddedAt,
	)
}
