package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upSeedDemoCatalog, downSeedDemoCatalog)
}

type seedProduct struct {
	name        string
	description string
	price       int
	stock       int
	category    string
}

var demoCatalog = []seedProduct{
	{"Coffee Gift Card $10", "Digital gift card for the coffee shop downstairs", 500, 100, "gift-cards"},
	{"Streaming Voucher 1 Month", "One month of the company streaming perk", 800, 50, "vouchers"},
	{"Lunch Voucher $15", "Redeemable at partner restaurants", 700, 80, "vouchers"},
	{"Wireless Mouse", "Bluetooth mouse from the IT storeroom", 1200, 25, "merchandise"},
	{"Company Hoodie", "Embroidered hoodie, ships in 2 weeks", 1500, 40, "merchandise"},
	{"Charity Donation $5", "We donate on your behalf", 250, 1000, "giving"},
}

func upSeedDemoCatalog(tx *sql.Tx) error {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to check products table: %w", err)
	}

	// Only seed an empty catalog
	if count > 0 {
		return nil
	}

	for _, p := range demoCatalog {
		_, err := tx.Exec(`
			INSERT INTO products (name, description, points_price, stock_quantity, category, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 'active', NOW(), NOW())
		`, p.name, p.description, p.price, p.stock, p.category)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.name, err)
		}
	}

	return nil
}

func downSeedDemoCatalog(tx *sql.Tx) error {
	for _, p := range demoCatalog {
		if _, err := tx.Exec("DELETE FROM products WHERE name = $1", p.name); err != nil {
			return fmt.Errorf("failed to remove seeded product %q: %w", p.name, err)
		}
	}
	return nil
}
