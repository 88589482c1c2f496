package categories

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category agrupa items. El nombre es único sin distinguir mayúsculas.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// URL es la ruta canónica del detalle.
func (category Category) URL() string {
	return "/category/" + category.ID
}

// ItemSummary es la proyección (name, price) de un item que referencia la categoría.
type ItemSummary struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

func (item ItemSummary) URL() string {
	return "/item/" + item.ID
}

// CategoryInput es lo que llega del formulario.
type CategoryInput struct {
	Name string
}

// Detail es una categoría con los items que la referencian.
type Detail struct {
	Category Category
	Items    []ItemSummary
}

// DeleteOutcome indica si se borró; si no, Items lista los items que lo impiden.
type DeleteOutcome struct {
	Category Category
	Items    []ItemSummary
	Deleted  bool
}
