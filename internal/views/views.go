// Package views renderiza las páginas HTML de la aplicación.
//
// Cada página es layout.html + su propio archivo, parseados una sola vez al
// arrancar. html/template escapa todo el contenido según el contexto, así que
// los datos llegan tal cual los guardó el usuario.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/Lelo88/inventory-app/internal/httpx"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Pages son los nombres de página válidos para Render.
var Pages = []string{
	"index",
	"category_list",
	"category_detail",
	"category_form",
	"category_delete",
	"item_list",
	"item_detail",
	"item_form",
	"item_delete",
	"error",
}

// Renderer guarda los templates ya parseados.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parsea todas las páginas. Falla al arrancar si algún template es inválido.
func New(logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(Pages))
	for _, page := range Pages {
		parsed, err := template.New(page).ParseFS(templateFiles, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		pages[page] = parsed
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render ejecuta la página en un buffer y recién ahí escribe status y body,
// para no mandar una página a medias si el template falla.
func (renderer *Renderer) Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any) {
	parsed, ok := renderer.pages[page]
	if !ok {
		renderer.logger.Error("unknown page", "page", page, "request_id", httpx.RequestIDFrom(request))
		http.Error(writer, "internal server error", http.StatusInternalServerError)
		return
	}

	var buffer bytes.Buffer
	if err := parsed.ExecuteTemplate(&buffer, "layout", data); err != nil {
		renderer.logger.Error("render template", "page", page, "error", err, "request_id", httpx.RequestIDFrom(request))
		http.Error(writer, "internal server error", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

// Error renderiza la página de error genérica.
func (renderer *Renderer) Error(writer http.ResponseWriter, request *http.Request, status int, message string) {
	renderer.Render(writer, request, status, "error", errorPage{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}

// ServerError loguea err y responde 500 sin filtrar detalles internos.
func (renderer *Renderer) ServerError(writer http.ResponseWriter, request *http.Request, err error) {
	renderer.logger.Error("request failed",
		"error", err,
		"method", request.Method,
		"path", request.URL.Path,
		"request_id", httpx.RequestIDFrom(request),
	)
	renderer.Error(writer, request, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// Static sirve los assets embebidos (montar bajo /static/).
func Static() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
