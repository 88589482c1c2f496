package db

import (
	"context"
	"fmt"
)

// schema se aplica en orden en cada arranque; todas las sentencias son idempotentes.
// Las referencias de un item a sus categorías viven en un arreglo ordenado,
// igual que un documento con un array embebido.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name       varchar(100) NOT NULL CHECK (char_length(name) >= 3),
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	// Unicidad case-insensitive a nivel store (ver DESIGN.md).
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_categories_name ON categories (lower(name))`,
	`CREATE TABLE IF NOT EXISTS items (
		id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name         text NOT NULL CHECK (name <> ''),
		description  text NOT NULL,
		price        numeric(10,2) NOT NULL CHECK (price >= 0),
		stock        integer NOT NULL CHECK (stock >= 0),
		category_ids uuid[] NOT NULL DEFAULT '{}',
		created_at   timestamptz NOT NULL DEFAULT now(),
		updated_at   timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_items_name ON items (name)`,
	`CREATE INDEX IF NOT EXISTS ix_items_category_ids ON items USING gin (category_ids)`,
}

// Migrate crea tablas e índices si no existen.
func Migrate(ctx context.Context, database Querier) error {
	for index, statement := range schema {
		if _, err := database.Exec(ctx, statement); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", index+1, err)
		}
	}
	return nil
}
