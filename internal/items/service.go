package items

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Lelo88/inventory-app/internal/categories"
	"github.com/Lelo88/inventory-app/internal/observability"
	"github.com/Lelo88/inventory-app/internal/validation"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Errores de dominio (no HTTP). El handler los traduce a status codes.
var ErrorNotFound = errors.New("item not found")

// numeric(10,2): ocho dígitos enteros y dos decimales como máximo.
const pricePlaces = 2

var maxPrice = decimal.New(1, 8)

// RepositoryAPI es lo que el service necesita de la persistencia de items.
type RepositoryAPI interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id string) (Item, error)
	Insert(ctx context.Context, record Item) (Item, error)
	Update(ctx context.Context, id string, record Item) (Item, error)
	Delete(ctx context.Context, id string) error
}

// CategoryLister resuelve las categorías referenciadas por los items.
type CategoryLister interface {
	List(ctx context.Context) ([]categories.Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]categories.Category, error)
}

// Service contiene reglas de negocio de items.
type Service struct {
	repository RepositoryAPI
	categories CategoryLister
}

// NewService crea un service de items.
func NewService(repository RepositoryAPI, categories CategoryLister) *Service {
	return &Service{repository: repository, categories: categories}
}

// List devuelve todos los items (por nombre) con sus categorías resueltas.
// Items y categorías se leen en paralelo.
func (service *Service) List(ctx context.Context) ([]Item, error) {
	var (
		items []Item
		all   []categories.Category
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		items, err = service.repository.List(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		all, err = service.categories.List(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	byID := indexCategories(all)
	for index := range items {
		items[index].Categories = resolve(items[index].CategoryIDs, byID)
	}
	return items, nil
}

// Detail obtiene un item con sus categorías resueltas.
func (service *Service) Detail(ctx context.Context, id string) (Item, error) {
	item, err := service.repository.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}

	found, err := service.categories.FindByIDs(ctx, item.CategoryIDs)
	if err != nil {
		return Item{}, fmt.Errorf("find item categories: %w", err)
	}
	item.Categories = resolve(item.CategoryIDs, indexCategories(found))
	return item, nil
}

func indexCategories(all []categories.Category) map[string]categories.Category {
	byID := make(map[string]categories.Category, len(all))
	for _, category := range all {
		byID[category.ID] = category
	}
	return byID
}

// resolve respeta el orden de ids y saltea referencias colgadas.
func resolve(ids []string, byID map[string]categories.Category) []categories.Category {
	resolved := make([]categories.Category, 0, len(ids))
	for _, id := range ids {
		if category, ok := byID[id]; ok {
			resolved = append(resolved, category)
		}
	}
	return resolved
}

// CreateForm devuelve el form vacío con todas las categorías sin marcar.
func (service *Service) CreateForm(ctx context.Context) (FormState, error) {
	all, err := service.categories.List(ctx)
	if err != nil {
		return FormState{}, err
	}
	return FormState{Categories: markCategories(all, nil)}, nil
}

// UpdateForm carga el item y todas las categorías en paralelo y marca las del item.
func (service *Service) UpdateForm(ctx context.Context, id string) (FormState, error) {
	var (
		item Item
		all  []categories.Category
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		item, err = service.repository.GetByID(groupCtx, id)
		return err
	})
	group.Go(func() (err error) {
		all, err = service.categories.List(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return FormState{}, err
	}

	input := ItemInput{
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price.StringFixed(2),
		Stock:       strconv.Itoa(item.Stock),
		Categories:  item.CategoryIDs,
	}
	return FormState{Input: input, Categories: markCategories(all, input.Categories)}, nil
}

func markCategories(all []categories.Category, selected []string) []CategoryOption {
	checked := make(map[string]bool, len(selected))
	for _, id := range selected {
		checked[id] = true
	}

	options := make([]CategoryOption, 0, len(all))
	for _, category := range all {
		options = append(options, CategoryOption{Category: category, Checked: checked[category.ID]})
	}
	return options
}

// Create valida y crea el item.
// Con errores de validación no persiste nada y devuelve el estado para volver a mostrar el form.
func (service *Service) Create(ctx context.Context, input ItemInput) (Item, *FormState, error) {
	record, state, err := service.prepare(ctx, input, true)
	if err != nil || state != nil {
		return Item{}, state, err
	}

	created, err := service.repository.Insert(ctx, record)
	if err != nil {
		return Item{}, nil, fmt.Errorf("insert item: %w", err)
	}

	observability.RecordMutation(ctx, "item", "create")
	return created, nil, nil
}

// Update valida y sobrescribe el item id. A diferencia de Create, la lista de categorías puede quedar vacía.
func (service *Service) Update(ctx context.Context, id string, input ItemInput) (Item, *FormState, error) {
	record, state, err := service.prepare(ctx, input, false)
	if err != nil || state != nil {
		return Item{}, state, err
	}

	updated, err := service.repository.Update(ctx, id, record)
	switch {
	case errors.Is(err, ErrorNotFound):
		return Item{}, nil, ErrorNotFound
	case err != nil:
		return Item{}, nil, fmt.Errorf("update item: %w", err)
	}

	observability.RecordMutation(ctx, "item", "update")
	return updated, nil, nil
}

// Delete borra el item sin chequear referencias. Que ya no exista no es un error.
func (service *Service) Delete(ctx context.Context, id string) error {
	err := service.repository.Delete(ctx, id)
	switch {
	case errors.Is(err, ErrorNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("delete item: %w", err)
	}

	observability.RecordMutation(ctx, "item", "delete")
	return nil
}

// prepare normaliza y valida el input. Si hay errores devuelve el FormState para re-render.
func (service *Service) prepare(ctx context.Context, input ItemInput, requireCategory bool) (Item, *FormState, error) {
	input = normalize(input)

	var validator validation.Validator
	validator.Required("name", input.Name, "Name must not be empty.")
	if requireCategory {
		validator.Check(len(input.Categories) > 0, "category", "Category must not be empty.")
	}
	validator.Required("description", input.Description, "Description must not be empty.")
	validator.Required("price", input.Price, "Price must not be empty")
	validator.Required("stock", input.Stock, "Stock quantity must not be empty")

	price := validator.Decimal("price", input.Price, pricePlaces, "Price must be a non-negative number with at most 2 decimals")
	validator.Check(price.LessThan(maxPrice), "price", "Price must be less than 100000000")
	stock := validator.Integer("stock", input.Stock, "Stock quantity must be a non-negative integer")

	ids := unique(validator.UUIDs("category", input.Categories, "Category is not valid"))
	if len(ids) > 0 {
		found, err := service.categories.FindByIDs(ctx, ids)
		if err != nil {
			return Item{}, nil, fmt.Errorf("find submitted categories: %w", err)
		}
		validator.Check(len(found) == len(ids), "category", "Category does not exist")
	}

	if !validator.Valid() {
		all, err := service.categories.List(ctx)
		if err != nil {
			return Item{}, nil, fmt.Errorf("list categories: %w", err)
		}
		if ids != nil {
			input.Categories = ids
		}
		return Item{}, &FormState{
			Input:      input,
			Categories: markCategories(all, input.Categories),
			Errors:     validator.Errors(),
		}, nil
	}

	return Item{
		Name:        input.Name,
		Description: input.Description,
		Price:       price,
		Stock:       stock,
		CategoryIDs: ids,
	}, nil, nil
}

// normalize recorta los campos y deja las categorías como lista sin repetidos, en el orden enviado.
func normalize(input ItemInput) ItemInput {
	input.Name = validation.Trim(input.Name)
	input.Description = validation.Trim(input.Description)
	input.Price = validation.Trim(input.Price)
	input.Stock = validation.Trim(input.Stock)

	trimmed := make([]string, 0, len(input.Categories))
	for _, id := range input.Categories {
		if id = validation.Trim(id); id != "" {
			trimmed = append(trimmed, id)
		}
	}
	input.Categories = unique(trimmed)
	return input
}

// unique conserva la primera aparición de cada id. nil sigue siendo nil.
func unique(ids []string) []string {
	if ids == nil {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
