package sqlite

import "database/sql"

func RunMigrations(db *sql.DB) error {
	stmts := []string{

		`CREATE TABLE IF NOT EXISTS businesses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner TEXT NOT NULL,
			phone_number TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS cashiers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			business_id TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			unique_id TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS payment_orders (
			id TEXT PRIMARY KEY,
			unique_id TEXT NOT NULL UNIQUE,
			amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			network TEXT NOT NULL,
			cashier_id TEXT NOT NULL,
			status TEXT NOT NULL,
			transaction_hash TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_payment_orders_cashier_status
			ON payment_orders (cashier_id, status);`,

		`CREATE TABLE IF NOT EXISTS outbox_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload BLOB NOT NULL,
			published INTEGER NOT NULL DEFAULT 0,
			published_at DATETIME,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
