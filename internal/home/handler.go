// Package home sirve la página de inicio con el resumen del inventario.
package home

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Counter cuenta filas de una tabla (lo cumplen ambos repositorios).
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Renderer es la parte de views que usa la home.
type Renderer interface {
	Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any)
	ServerError(writer http.ResponseWriter, request *http.Request, err error)
}

// Summary son los totales que muestra la home.
type Summary struct {
	CategoryCount int
	ItemCount     int
}

// Handler de la página de inicio.
type Handler struct {
	categories Counter
	items      Counter
	renderer   Renderer
}

// NewHandler crea el handler de la home.
func NewHandler(categories, items Counter, renderer Renderer) *Handler {
	return &Handler{categories: categories, items: items, renderer: renderer}
}

// Summarize cuenta categorías e items en paralelo.
func (handler *Handler) Summarize(ctx context.Context) (Summary, error) {
	var summary Summary

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		summary.CategoryCount, err = handler.categories.Count(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		summary.ItemCount, err = handler.items.Count(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

type indexPage struct {
	Title string
	Summary
}

// Index maneja GET /.
func (handler *Handler) Index(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.Summarize(request.Context())
	if err != nil {
		handler.renderer.ServerError(writer, request, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, "index", indexPage{
		Title:   "Inventory Application",
		Summary: summary,
	})
}

// RegisterRoutes registra la home.
func RegisterRoutes(route chi.Router, handler *Handler) {
	route.Get("/", handler.Index)
}
