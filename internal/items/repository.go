package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lelo88/inventory-app/internal/db"
	"github.com/Lelo88/inventory-app/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository accede a la tabla items.
// Contiene SQL y mapeo DB → modelo.
type Repository struct {
	database db.Querier
}

// NewRepository crea un repositorio de items.
func NewRepository(database db.Querier) *Repository {
	return &Repository{database: database}
}

// price y category_ids se leen como texto: evita depender del codec de numeric y uuid[].
const itemColumns = `id, name, description, price::text, stock, category_ids::text[], created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var (
		item  Item
		price string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &price, &item.Stock, &item.CategoryIDs, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return Item{}, fmt.Errorf("parse price of item %s: %w", item.ID, err)
	}
	if item.CategoryIDs == nil {
		item.CategoryIDs = []string{}
	}
	return item, nil
}

// List devuelve todos los items ordenados por nombre, sin categorías resueltas.
func (repository *Repository) List(ctx context.Context) (items []Item, err error) {
	ctx, finish := observability.StartQuery(ctx, "items.list")
	defer func() { finish(err) }()

	rows, err := repository.database.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items = []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID busca por id. Devuelve ErrorNotFound si no existe.
func (repository *Repository) GetByID(ctx context.Context, id string) (item Item, err error) {
	ctx, finish := observability.StartQuery(ctx, "items.get")
	defer func() { finish(err) }()

	item, err = scanItem(repository.database.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrorNotFound
	}
	return item, err
}

// Insert crea el item y devuelve el registro persistido.
// Usamos RETURNING para obtener id y timestamps generados por DB.
func (repository *Repository) Insert(ctx context.Context, record Item) (item Item, err error) {
	ctx, finish := observability.StartQuery(ctx, "items.insert")
	defer func() { finish(err) }()

	const query = `
		INSERT INTO items (name, description, price, stock, category_ids)
		VALUES ($1, $2, $3::numeric, $4, $5::text[]::uuid[])
		RETURNING ` + itemColumns

	return scanItem(repository.database.QueryRow(ctx, query,
		record.Name, record.Description, record.Price.String(), record.Stock, categoryIDs(record)))
}

// Update sobrescribe todos los campos. ErrorNotFound si el id no existe.
func (repository *Repository) Update(ctx context.Context, id string, record Item) (item Item, err error) {
	ctx, finish := observability.StartQuery(ctx, "items.update")
	defer func() { finish(err) }()

	const query = `
		UPDATE items
		SET name = $2, description = $3, price = $4::numeric, stock = $5,
		    category_ids = $6::text[]::uuid[], updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns

	item, err = scanItem(repository.database.QueryRow(ctx, query,
		id, record.Name, record.Description, record.Price.String(), record.Stock, categoryIDs(record)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrorNotFound
	}
	return item, err
}

// categoryIDs nunca es nil: pgx codifica un slice nil como NULL y la columna es NOT NULL.
func categoryIDs(record Item) []string {
	if record.CategoryIDs == nil {
		return []string{}
	}
	return record.CategoryIDs
}

// Delete borra por id. ErrorNotFound si no había nada que borrar.
func (repository *Repository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := observability.StartQuery(ctx, "items.delete")
	defer func() { finish(err) }()

	tag, err := repository.database.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// Count devuelve el total de items.
func (repository *Repository) Count(ctx context.Context) (total int, err error) {
	ctx, finish := observability.StartQuery(ctx, "items.count")
	defer func() { finish(err) }()

	err = repository.database.QueryRow(ctx, `SELECT count(*) FROM items`).Scan(&total)
	return total, err
}
