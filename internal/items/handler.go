package items

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
	List(ctx context.Context) ([]Item, error)
	Detail(ctx context.Context, id string) (Item, error)
	CreateForm(ctx context.Context) (FormState, error)
	UpdateForm(ctx context.Context, id string) (FormState, error)
	Create(ctx context.Context, input ItemInput) (Item, *FormState, error)
	Update(ctx context.Context, id string, input ItemInput) (Item, *FormState, error)
	Delete(ctx context.Context, id string) error
}

// Renderer es la parte de views que usan los handlers.
type Renderer interface {
	Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any)
	Error(writer http.ResponseWriter, request *http.Request, status int, message string)
	ServerError(writer http.ResponseWriter, request *http.Request, err error)
}

// Handler HTTP para items.
type Handler struct {
	service  ServiceAPI
	renderer Renderer
}

// NewHandler crea un handler de items.
func NewHandler(service ServiceAPI, renderer Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

const (
	notFoundMessage = "Item not found"
	listPath        = "/item"
)

type listPage struct {
	Title string
	Items []Item
}

type detailPage struct {
	Title string
	Item  Item
}

type formPage struct {
	Title      string
	Input      ItemInput
	Categories []CategoryOption
	Errors     validation.Errors
}

func newFormPage(title string, state FormState) formPage {
	return formPage{Title: title, Input: state.Input, Categories: state.Categories, Errors: state.Errors}
}

// parseID valida el formato UUID. Un id inválido no puede existir en DB.
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if errors.Is(err, ErrorNotFound) {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}
	handler.renderer.ServerError(writer, request, err)
}

// readInput arma el ItemInput desde el form; category puede venir 0, 1 o N veces.
func readInput(form httpx.Form) ItemInput {
	return ItemInput{
		Name:        form.Value("name"),
		Description: form.Value("description"),
		Price:       form.Value("price"),
		Stock:       form.Value("stock"),
		Categories:  form.List("category"),
	}
}

// List maneja GET /item.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	items, err := handler.service.List(request.Context())
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "item_list", listPage{Title: "Item List", Items: items})
}

// Detail maneja GET /item/{id}.
func (handler *Handler) Detail(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(chi.URLParam(request, "id"))
	if !ok {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}

	item, err := handler.service.Detail(request.Context(), id)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "item_detail", detailPage{Title: item.Name, Item: item})
}

// CreateForm maneja GET /item/create.
func (handler *Handler) CreateForm(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.service.CreateForm(request.Context())
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "item_form", newFormPage("Create Item", state))
}

// Create maneja POST /item/create.
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	form, err := httpx.ParseForm(request)
	if err != nil {
		handler.renderer.Error(writer, request, http.StatusBadRequest, "Invalid form submission")
		return
	}

	item, state, err := handler.service.Create(request.Context(), readInput(form))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	if state != nil {
		handler.renderer.Render(writer, request, http.StatusOK, "item_form", newFormPage("Create Item", *state))
		return
	}

	httpx.Redirect(writer, request, item.URL())
}

// UpdateForm maneja GET /item/{id}/update.
func (handler *Handler) UpdateForm(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(chi.URLParam(request, "id"))
	if !ok {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}

	state, err := handler.service.UpdateForm(request.Context(), id)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "item_form", newFormPage("Update Item", state))
}

// Update maneja POST /item/{id}/update.
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(chi.URLParam(request, "id"))
	if !ok {
		handler.renderer.Error(writer, request, http.StatusNotFound, notFoundMessage)
		return
	}

	form, err := httpx.ParseForm(request)
	if err != nil {
		handler.renderer.Error(writer, request, http.StatusBadRequest, "Invalid form submission")
		return
	}

	item, state, err := handler.service.Update(request.Context(), id, readInput(form))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	if state != nil {
		handler.renderer.Render(writer, request, http.StatusOK, "item_form", newFormPage("Update Item", *state))
		return
	}

	httpx.Redirect(writer, request, item.URL())
}

// DeleteForm maneja GET /item/{id}/delete. Si el item no existe vuelve a la lista.
func (handler *Handler) DeleteForm(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(chi.URLParam(request, "id"))
	if !ok {
		httpx.Redirect(writer, request, listPath)
		return
	}

	item, err := handler.service.Detail(request.Context(), id)
	switch {
	case errors.Is(err, ErrorNotFound):
		httpx.Redirect(writer, request, listPath)
		return
	case err != nil:
		handler.fail(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "item_delete", detailPage{Title: "Delete Item", Item: item})
}

// Delete maneja POST /item/{id}/delete.
// El id viene en "itemid" (cae al de la ruta). Sin chequeo de referencias; siempre vuelve a la lista.
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	form, err := httpx.ParseForm(request)
	if err != nil {
		handler.renderer.Error(writer, request, http.StatusBadRequest, "Invalid form submission")
		return
	}

	rawID := form.Value("itemid")
	if rawID == "" {
		rawID = chi.URLParam(request, "id")
	}
	if id, ok := parseID(rawID); ok {
		if err := handler.service.Delete(request.Context(), id); err != nil {
			handler.fail(writer, request, err)
			return
		}
	}

	httpx.Redirect(writer, request, listPath)
}
