package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'order_status') THEN
			CREATE TYPE order_status AS ENUM ('DRAFT', 'CREATED', 'APPROVED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED', 'DELETED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'order_item_type') THEN
			CREATE TYPE order_item_type AS ENUM ('equipment', 'material', 'service', 'attachment');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		address VARCHAR(500) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(32) NOT NULL,
		client_id UUID REFERENCES clients(id),
		address VARCHAR(500) NOT NULL DEFAULT '',
		start_dt TIMESTAMPTZ NOT NULL,
		end_dt TIMESTAMPTZ,
		description TEXT NOT NULL DEFAULT '',
		status order_status NOT NULL DEFAULT 'CREATED',
		prepayment_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		price_snapshot JSONB NOT NULL DEFAULT '{}',
		meta JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_number ON orders (number);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_start_dt ON orders (start_dt);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_type order_item_type NOT NULL,
		name_snapshot VARCHAR(255) NOT NULL,
		quantity NUMERIC(10,2) NOT NULL DEFAULT 1,
		unit VARCHAR(32) NOT NULL DEFAULT '',
		unit_price NUMERIC(12,2) NOT NULL,
		tax_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		discount NUMERIC(6,2) NOT NULL DEFAULT 0,
		metadata JSONB NOT NULL DEFAULT '{}',
		position INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
