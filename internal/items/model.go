package items

import (
	"time"

	"github.com/Lelo88/inventory-app/internal/categories"
	"github.com/Lelo88/inventory-app/internal/validation"
	"github.com/shopspring/decimal"
)

// Item representa un registro persistido en DB.
// Price usa decimal para no perder precisión (DB: numeric(10,2)).
// CategoryIDs conserva el orden en que se eligieron; Categories se resuelve al mostrar.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryIDs []string
	Categories  []categories.Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// URL es la ruta canónica del detalle.
func (item Item) URL() string {
	return "/item/" + item.ID
}

// ItemInput son los campos del formulario tal como llegan (texto).
// Categories ya viene normalizado a lista.
type ItemInput struct {
	Name        string
	Description string
	Price       string
	Stock       string
	Categories  []string
}

// CategoryOption es una categoría del form con su checkbox.
type CategoryOption struct {
	categories.Category
	Checked bool
}

// FormState es lo necesario para volver a mostrar el form de item.
type FormState struct {
	Input      ItemInput
	Categories []CategoryOption
	Errors     validation.Errors
}
