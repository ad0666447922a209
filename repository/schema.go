package repository

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS help_requests (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		donor_id TEXT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		items JSONB NOT NULL DEFAULT '[]'::jsonb,
		category TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		status TEXT NOT NULL DEFAULT 'open',
		address TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		zip_code TEXT NOT NULL DEFAULT '',
		window_start TIMESTAMPTZ NOT NULL,
		window_end TIMESTAMPTZ NOT NULL,
		time_slots JSONB NOT NULL DEFAULT '[]'::jsonb,
		notes JSONB NOT NULL DEFAULT '[]'::jsonb,
		rating JSONB,
		views BIGINT NOT NULL DEFAULT 0,
		interested JSONB NOT NULL DEFAULT '[]'::jsonb,
		flag JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		approved_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS help_requests_status_window_idx ON help_requests (status, window_end)`,
	`CREATE INDEX IF NOT EXISTS help_requests_coords_idx ON help_requests (latitude, longitude)`,
	`CREATE INDEX IF NOT EXISTS help_requests_recipient_idx ON help_requests (recipient_id)`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`INSERT INTO catalog_items (id, name, category) VALUES
		('water-bottle', 'Bottled water', 'food'),
		('canned-food', 'Canned food', 'food'),
		('bread', 'Bread', 'food'),
		('baby-formula', 'Baby formula', 'food'),
		('blanket', 'Blanket', 'shelter'),
		('tent', 'Tent', 'shelter'),
		('sleeping-bag', 'Sleeping bag', 'shelter'),
		('heater', 'Portable heater', 'shelter'),
		('first-aid-kit', 'First aid kit', 'medical'),
		('bandage', 'Bandages', 'medical'),
		('insulin', 'Insulin', 'medical'),
		('diapers', 'Diapers', 'hygiene'),
		('soap', 'Soap', 'hygiene'),
		('toothbrush', 'Toothbrush', 'hygiene'),
		('winter-coat', 'Winter coat', 'clothing'),
		('boots', 'Boots', 'clothing')
	ON CONFLICT (id) DO NOTHING`,
}

// Migrate applies the schema at startup. Every statement is idempotent, so
// a restart against an existing database is a no-op.
func (repo *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := repo.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("could not apply schema: %w", err)
		}
	}
	return nil
}
