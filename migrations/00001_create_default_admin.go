package migrations

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	goose.AddMigration(upCreateDefaultAdmin, downCreateDefaultAdmin)
}

func upCreateDefaultAdmin(tx *sql.Tx) error {
	// Get admin credentials from environment or use defaults
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@awsomeshop.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "ChangeMe123!"
	}

	// Hash the password with bcrypt cost 14 (same as in the app)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 14)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Check if an admin already exists
	var count int
	err = tx.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check existing admin: %w", err)
	}

	if count > 0 {
		return nil
	}

	var adminID uint
	query := `
		INSERT INTO users (username, email, password, role, is_active, monthly_allocation, created_at, updated_at)
		VALUES ($1, $2, $3, 'admin', true, 0, NOW(), NOW())
		RETURNING id
	`
	if err := tx.QueryRow(query, adminUsername, adminEmail, string(hashedPassword)).Scan(&adminID); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	// Admins get a points record too, so the balance endpoint works for them
	_, err = tx.Exec(`
		INSERT INTO points (user_id, current_balance, created_at, updated_at)
		VALUES ($1, 0, NOW(), NOW())
	`, adminID)
	if err != nil {
		return fmt.Errorf("failed to initialize admin points: %w", err)
	}

	return nil
}

func downCreateDefaultAdmin(tx *sql.Tx) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	_, err := tx.Exec(`
		DELETE FROM points WHERE user_id IN (SELECT id FROM users WHERE username = $1 AND role = 'admin')
	`, adminUsername)
	if err != nil {
		return fmt.Errorf("failed to delete admin points: %w", err)
	}

	_, err = tx.Exec("DELETE FROM users WHERE username = $1 AND role = 'admin'", adminUsername)
	if err != nil {
		return fmt.Errorf("failed to delete admin user: %w", err)
	}

	return nil
}
