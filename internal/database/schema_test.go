package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_users_table.sql",
		"00002_create_refresh_tokens_table.sql",
		"00003_create_stores_table.sql",
		"00004_create_products_table.sql",
		"00005_create_offers_table.sql",
		"00006_create_shopping_list_items_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"users":               "00001_create_users_table.sql",
		"refresh_tokens":      "00002_create_refresh_tokens_table.sql",
		"stores":              "00003_create_stores_table.sql",
		"products":            "00004_create_products_table.sql",
		"offers":              "00005_create_offers_table.sql",
		"shopping_list_items": "00006_create_shopping_list_items_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		// Check if migration creates the table
		createTableStmt := "CREATE TABLE " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		// Check if migration has drop table in down section
		dropTableStmt := "DROP TABLE " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableHasNameKeyConstraint(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00004_create_products_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)

	// Concurrent first contributions rely on this unique constraint to
	// converge on a single catalog row.
	if !strings.Contains(contentStr, "name_key VARCHAR(255) UNIQUE NOT NULL") {
		t.Error("Products table missing unique name_key constraint")
	}

	requiredColumns := []string{
		"best_on_sale BOOLEAN",
		"best_sale_price NUMERIC",
		"best_regular_price NUMERIC",
		"best_store_id VARCHAR",
		"best_offer_updated_at TIMESTAMPTZ",
	}
	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing denormalized best-offer column: %s", column)
		}
	}
}

func TestStoresTableIsSeeded(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00003_create_stores_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read stores migration: %v", err)
	}

	contentStr := string(content)

	// The store registry is seeded reference data, not user-editable.
	seedStores := []string{"walmart-boardwalk", "market-cmh", "lazaridis-hall"}
	for _, id := range seedStores {
		if !strings.Contains(contentStr, id) {
			t.Errorf("Stores migration missing seed store: %s", id)
		}
	}
}

func TestShoppingListItemsHasNameLookupIndex(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00006_create_shopping_list_items_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read shopping_list_items migration: %v", err)
	}

	contentStr := string(content)

	// Offer propagation finds affected users by normalized item name.
	if !strings.Contains(contentStr, "lower(trim(item_name))") {
		t.Error("Shopping list items table missing normalized item_name index")
	}
	if !strings.Contains(contentStr, "ON DELETE CASCADE") {
		t.Error("Shopping list items must be removed with their owner")
	}
}
