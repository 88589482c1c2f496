package items

import "github.com/go-chi/chi/v5"

// RegisterRoutes registra rutas de items en el router.
func RegisterRoutes(route chi.Router, handler *Handler) {
	route.Route("/item", func(route chi.Router) {
		route.Get("/", handler.List)
		route.Get("/create", handler.CreateForm)
		route.Post("/create", handler.Create)
		route.Get("/{id}", handler.Detail)
		route.Get("/{id}/delete", handler.DeleteForm)
		route.Post("/{id}/delete", handler.Delete)
		route.Get("/{id}/update", handler.UpdateForm)
		route.Post("/{id}/update", handler.Update)
	})
}
