package categories

import (
	"context"
	"errors"
	"net/http"

	"github.com/Lelo88/inventory-app/internal/httpx"
	"github.com/Lelo88/inventory-app/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ServiceAPI define lo que el handler necesita.
// Permite testear handlers con stubs sin tocar DB.
type ServiceAPI interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id string) (Category, error)
	Detail(ctx context.Context, id string) (Detail, error)
	Create(ctx context.Context, input CategoryInput) (Category, validation.Errors, error)
	Update(ctx context.Context, id string, input CategoryInput) (Category, validation.Errors, error)
	Delete(ctx context.Context, id string) (DeleteOutcome, error)
}

// Renderer es la parte de views que usan los handlers.
type Renderer interface {
	Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any)
	Error(writer http.ResponseWriter, request *http.Request, status int, message string)
	ServerError(writer http.ResponseWriter, request *http.Request, err error)
}

// Handler HTTP para categorías. Traduce HTTP <-> service y elige la vista.
type Handler struct {
	service  ServiceAPI
	renderer Renderer
}

// NewHandler crea un handler de categorías.
func NewHandler(service ServiceAPI, renderer Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

const notFoundMessage = "Category not found"

type listPage struct {
	Title      string
	Categories []Category
}

type detailPage struct {
	Title    string
	Category Category
	Items    []ItemSummary
}

type formPage struct {
	Title    string
	Category Category
	Errors   validation.Errors
}

// pathID lee {id} de la ruta. Un id que no es UUID no puede existir: se trata como 404.
func pathID(request *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(request, "id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// fail traduce errores del service: ErrorNotFound → 404, el resto → 500.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if errors.Is(err, ErrorNotFound) {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}
	handler.renderer.ServerError(writer, request, err)
}

// List maneja GET /category.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.List(request.Context())
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "category_list", listPage{
		Title:      "Category List",
		Categories: categories,
	})
}

// Detail maneja GET /category/{id}.
func (handler *Handler) Detail(writer http.ResponseWriter, request *http.Request) {
	handler.renderDetail(writer, request, "category_detail", "Category Detail")
}

// DeleteForm maneja GET /category/{id}/delete: confirmación con los items que la referencian.
func (handler *Handler) DeleteForm(writer http.ResponseWriter, request *http.Request) {
	handler.renderDetail(writer, request, "category_delete", "Delete Category")
}

func (handler *Handler) renderDetail(writer http.ResponseWriter, request *http.Request, page, title string) {
	id, ok := pathID(request)
	if !ok {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}

	detail, err := handler.service.Detail(request.Context(), id)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, page, detailPage{
		Title:    title,
		Category: detail.Category,
		Items:    detail.Items,
	})
}

// CreateForm maneja GET /category/create.
func (handler *Handler) CreateForm(writer http.ResponseWriter, request *http.Request) {
	handler.renderer.Render(writer, request, http.StatusOK, "category_form", formPage{Title: "Create Category"})
}

// Create maneja POST /category/create.
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	form, err := httpx.ParseForm(request)
	if err != nil {
		handler.renderer.Error(writer, request, http.StatusBadRequest, "Invalid form submission")
		return
	}

	category, errs, err := handler.service.Create(request.Context(), CategoryInput{Name: form.Value("name")})
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	if len(errs) > 0 {
		handler.renderer.Render(writer, request, http.StatusOK, "category_form", formPage{
			Title:    "Create Category",
			Category: category,
			Errors:   errs,
		})
		return
	}

	httpx.Redirect(writer, request, category.URL())
}

// UpdateForm maneja GET /category/{id}/update.
func (handler *Handler) UpdateForm(writer http.ResponseWriter, request *http.Request) {
	id, ok := pathID(request)
	if !ok {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}

	category, err := handler.service.Get(request.Context(), id)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "category_form", formPage{
		Title:    "Update Category",
		Category: category,
	})
}

// Update maneja POST /category/{id}/update.
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	id, ok := pathID(request)
	if !ok {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}

	form, err := httpx.ParseForm(request)
	if err != nil {
		handler.renderer.Error(writer, request, http.StatusBadRequest, "Invalid form submission")
		return
	}

	category, errs, err := handler.service.Update(request.Context(), id, CategoryInput{Name: form.Value("name")})
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	if len(errs) > 0 {
		handler.renderer.Render(writer, request, http.StatusOK, "category_form", formPage{
			Title:    "Update Category",
			Category: category,
			Errors:   errs,
		})
		return
	}

	httpx.Redirect(writer, request, category.URL())
}

// Delete maneja POST /category/{id}/delete.
// El id a borrar viene en el campo "categoryid" (cae al de la ruta si no viene).
// Si hay items que la referencian se vuelve a mostrar la confirmación con esos items.
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	form, err := httpx.ParseForm(request)
	if err != nil {
		handler.renderer.Error(writer, request, http.StatusBadRequest, "Invalid form submission")
		return
	}

	rawID := form.Value("categoryid")
	if rawID == "" {
		rawID = chi.URLParam(request, "id")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}

	outcome, err := handler.service.Delete(request.Context(), id.String())
	switch {
	case errors.Is(err, ErrorNotFound):
		// Ya no existe: mismo destino que un borrado exitoso.
		httpx.Redirect(writer, request, "/category")
		return
	case err != nil:
		handler.fail(writer, request, err)
		return
	}

	if !outcome.Deleted {
		handler.renderer.Render(writer, request, http.StatusOK, "category_delete", detailPage{
			Title:    "Delete Category",
			Category: outcome.Category,
			Items:    outcome.Items,
		})
		return
	}

	httpx.Redirect(writer, request, "/category")
}
