package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lelo88/inventory-app/internal/db"
	"github.com/Lelo88/inventory-app/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Repository accede a la tabla categories (y lee items para el chequeo de referencias).
type Repository struct {
	database db.Querier
}

// NewRepository crea un repositorio de categorías.
func NewRepository(database db.Querier) *Repository {
	return &Repository{database: database}
}

const categoryColumns = `id, name, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var category Category
	err := row.Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	return category, err
}

// mapWriteError traduce errores de Postgres a errores de dominio.
func mapWriteError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}
	// Postgres: unique_violation = 23505 (ux_categories_name).
	var postgresError *pgconn.PgError
	if errors.As(err, &postgresError) && postgresError.Code == "23505" {
		return ErrorDuplicateName
	}
	return err
}

// List devuelve todas las categorías ordenadas por nombre.
func (repository *Repository) List(ctx context.Context) (categories []Category, err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.list")
	defer func() { finish(err) }()

	rows, err := repository.database.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// FindByIDs devuelve las categorías cuyo id está en ids. Los ids inexistentes se ignoran.
func (repository *Repository) FindByIDs(ctx context.Context, ids []string) (categories []Category, err error) {
	if len(ids) == 0 {
		return []Category{}, nil
	}

	ctx, finish := observability.StartQuery(ctx, "categories.find_by_ids")
	defer func() { finish(err) }()

	rows, err := repository.database.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1::text[]::uuid[]) ORDER BY name ASC, id ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

func collectCategories(rows pgx.Rows) ([]Category, error) {
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID busca por id. Devuelve ErrorNotFound si no existe.
func (repository *Repository) GetByID(ctx context.Context, id string) (category Category, err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.get")
	defer func() { finish(err) }()

	category, err = scanCategory(repository.database.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrorNotFound
	}
	return category, err
}

// FindByName compara sin distinguir mayúsculas (mismo criterio que ux_categories_name).
func (repository *Repository) FindByName(ctx context.Context, name string) (category Category, err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.find_by_name")
	defer func() { finish(err) }()

	category, err = scanCategory(repository.database.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE lower(name) = lower($1) LIMIT 1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrorNotFound
	}
	return category, err
}

// Insert crea la categoría; el id y timestamps los genera la DB.
func (repository *Repository) Insert(ctx context.Context, input CategoryInput) (category Category, err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.insert")
	defer func() { finish(err) }()

	category, err = scanCategory(repository.database.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING `+categoryColumns, input.Name))
	if err != nil {
		return Category{}, mapWriteError(err)
	}
	return category, nil
}

// Update reemplaza el nombre. ErrorNotFound si el id no existe.
func (repository *Repository) Update(ctx context.Context, id string, input CategoryInput) (category Category, err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.update")
	defer func() { finish(err) }()

	category, err = scanCategory(repository.database.QueryRow(ctx,
		`UPDATE categories SET name = $2, updated_at = now() WHERE id = $1 RETURNING `+categoryColumns,
		id, input.Name))
	if err != nil {
		return Category{}, mapWriteError(err)
	}
	return category, nil
}

// Delete borra por id. ErrorNotFound si no había nada que borrar.
func (repository *Repository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.delete")
	defer func() { finish(err) }()

	tag, err := repository.database.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// ListItems devuelve (id, name, price) de los items que referencian la categoría.
func (repository *Repository) ListItems(ctx context.Context, categoryID string) (items []ItemSummary, err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.list_items")
	defer func() { finish(err) }()

	rows, err := repository.database.Query(ctx,
		`SELECT id, name, price::text FROM items WHERE $1::uuid = ANY(category_ids) ORDER BY name ASC, id ASC`,
		categoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items = []ItemSummary{}
	for rows.Next() {
		var (
			item  ItemSummary
			price string
		)
		if err := rows.Scan(&item.ID, &item.Name, &price); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price of item %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Count devuelve el total de categorías.
func (repository *Repository) Count(ctx context.Context) (total int, err error) {
	ctx, finish := observability.StartQuery(ctx, "categories.count")
	defer func() { finish(err) }()

	err = repository.database.QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&total)
	return total, err
}
