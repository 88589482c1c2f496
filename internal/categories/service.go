package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lelo88/inventory-app/internal/observability"
	"github.com/Lelo88/inventory-app/internal/validation"
	"golang.org/x/sync/errgroup"
)

// Errores de dominio (no HTTP). El handler los traduce a status codes.
var (
	ErrorDuplicateName = errors.New("duplicate category name")
	ErrorNotFound      = errors.New("category not found")
)

const (
	nameMinLength = 3
	nameMaxLength = 100
)

// RepositoryAPI es lo que el service necesita de la persistencia.
type RepositoryAPI interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	FindByName(ctx context.Context, name string) (Category, error)
	Insert(ctx context.Context, input CategoryInput) (Category, error)
	Update(ctx context.Context, id string, input CategoryInput) (Category, error)
	Delete(ctx context.Context, id string) error
	ListItems(ctx context.Context, categoryID string) ([]ItemSummary, error)
}

// Service contiene las reglas de negocio de categorías.
type Service struct {
	repository RepositoryAPI
}

// NewService crea un service de categorías.
func NewService(repository RepositoryAPI) *Service {
	return &Service{repository: repository}
}

// List devuelve todas las categorías ordenadas por nombre.
func (service *Service) List(ctx context.Context) ([]Category, error) {
	return service.repository.List(ctx)
}

// Get obtiene una categoría por id.
func (service *Service) Get(ctx context.Context, id string) (Category, error) {
	return service.repository.GetByID(ctx, id)
}

// Detail trae la categoría y sus items en paralelo.
func (service *Service) Detail(ctx context.Context, id string) (Detail, error) {
	var detail Detail

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		category, err := service.repository.GetByID(groupCtx, id)
		detail.Category = category
		return err
	})
	group.Go(func() error {
		items, err := service.repository.ListItems(groupCtx, id)
		detail.Items = items
		return err
	})
	if err := group.Wait(); err != nil {
		return Detail{}, err
	}

	return detail, nil
}

// validate recorta y valida el nombre. Devuelve el input normalizado.
func validate(input CategoryInput) (CategoryInput, validation.Errors) {
	input.Name = validation.Trim(input.Name)

	var validator validation.Validator
	validator.MinLength("name", input.Name, nameMinLength, "Category name must contain at least 3 characters")
	validator.MaxLength("name", input.Name, nameMaxLength, "Category name must not exceed 100 characters")

	return input, validator.Errors()
}

// Create valida y crea la categoría.
// Si el nombre ya existe (sin distinguir mayúsculas) no crea nada y devuelve la existente.
// Con errores de validación devuelve la categoría a medio llenar para volver a mostrar el form.
func (service *Service) Create(ctx context.Context, input CategoryInput) (Category, validation.Errors, error) {
	input, errs := validate(input)
	if len(errs) > 0 {
		return Category{Name: input.Name}, errs, nil
	}

	existing, err := service.repository.FindByName(ctx, input.Name)
	switch {
	case err == nil:
		return existing, nil, nil
	case !errors.Is(err, ErrorNotFound):
		return Category{}, nil, fmt.Errorf("find category by name: %w", err)
	}

	created, err := service.repository.Insert(ctx, input)
	if errors.Is(err, ErrorDuplicateName) {
		// Otro request la creó entre el chequeo y el insert: resolvemos a la ganadora.
		winner, findErr := service.repository.FindByName(ctx, input.Name)
		if findErr != nil {
			return Category{}, nil, fmt.Errorf("find category after duplicate insert: %w", findErr)
		}
		return winner, nil, nil
	}
	if err != nil {
		return Category{}, nil, fmt.Errorf("insert category: %w", err)
	}

	observability.RecordMutation(ctx, "category", "create")
	return created, nil, nil
}

// Update valida y renombra la categoría id.
// Si otra categoría ya usa el nombre, devuelve esa sin modificar nada.
// Si el nombre coincide con la misma categoría (p. ej. sólo cambian mayúsculas) se actualiza igual.
func (service *Service) Update(ctx context.Context, id string, input CategoryInput) (Category, validation.Errors, error) {
	input, errs := validate(input)
	if len(errs) > 0 {
		return Category{ID: id, Name: input.Name}, errs, nil
	}

	existing, err := service.repository.FindByName(ctx, input.Name)
	switch {
	case err == nil && existing.ID != id:
		return existing, nil, nil
	case err != nil && !errors.Is(err, ErrorNotFound):
		return Category{}, nil, fmt.Errorf("find category by name: %w", err)
	}

	updated, err := service.repository.Update(ctx, id, input)
	switch {
	case errors.Is(err, ErrorNotFound):
		return Category{}, nil, ErrorNotFound
	case errors.Is(err, ErrorDuplicateName):
		winner, findErr := service.repository.FindByName(ctx, input.Name)
		if findErr != nil {
			return Category{}, nil, fmt.Errorf("find category after duplicate update: %w", findErr)
		}
		return winner, nil, nil
	case err != nil:
		return Category{}, nil, fmt.Errorf("update category: %w", err)
	}

	observability.RecordMutation(ctx, "category", "update")
	return updated, nil, nil
}

// Delete borra la categoría sólo si ningún item la referencia.
// Si hay items, no es un error: el resultado viene con Deleted=false y los items que lo impiden.
// Si la categoría no existe devuelve ErrorNotFound.
func (service *Service) Delete(ctx context.Context, id string) (DeleteOutcome, error) {
	detail, err := service.Detail(ctx, id)
	if err != nil {
		return DeleteOutcome{}, err
	}

	outcome := DeleteOutcome{Category: detail.Category, Items: detail.Items}
	if len(detail.Items) > 0 {
		return outcome, nil
	}

	if err := service.repository.Delete(ctx, id); err != nil && !errors.Is(err, ErrorNotFound) {
		return DeleteOutcome{}, fmt.Errorf("delete category: %w", err)
	}

	observability.RecordMutation(ctx, "category", "delete")
	outcome.Deleted = true
	return outcome, nil
}
