package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oybekm/stockyard-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestStockMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_stock_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS product_entries",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"CHECK (saled_quantity >= 0)",
		"CHECK (saled_quantity <= quantity)",
		"idx_products_warehouse_entry",
		"DROP TABLE IF EXISTS product_entries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderMigrationContainsSweepIndex(t *testing.T) {
	content := readMigration(t, "*_create_order_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS client_orders",
		"idx_client_orders_sweep",
		"WHERE confirmed = TRUE AND status NOT IN ('overdue', 'paid')",
		"FOREIGN KEY (client_order_id) REFERENCES client_orders(id) ON DELETE CASCADE",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
