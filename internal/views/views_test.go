package views

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) (*Renderer, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	renderer, err := New(slog.New(slog.NewJSONHandler(&logs, nil)))
	require.NoError(t, err)
	return renderer, &logs
}

func TestNew_ParsesEveryPage(t *testing.T) {
	renderer, _ := newRenderer(t)

	for _, page := range Pages {
		require.Contains(t, renderer.pages, page)
	}
}

func TestRenderer_Render(t *testing.T) {
	renderer, _ := newRenderer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	renderer.Render(rec, req, http.StatusOK, "index", struct {
		Title         string
		CategoryCount int
		ItemCount     int
	}{Title: "Inventory Application", CategoryCount: 3, ItemCount: 7})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Contains(t, body, "<title>Inventory Application</title>")
	require.Contains(t, body, "<strong>Categories:</strong> 3")
	require.Contains(t, body, "<strong>Items:</strong> 7")
}

func TestRenderer_RenderEscapesContent(t *testing.T) {
	renderer, _ := newRenderer(t)
	rec := httptest.NewRecorder()

	renderer.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, `<script>alert("x")</script>`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotContains(t, rec.Body.String(), "<script>")
	require.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestRenderer_UnknownPage(t *testing.T) {
	renderer, logs := newRenderer(t)
	rec := httptest.NewRecorder()

	renderer.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, logs.String(), "unknown page")
}

func TestRenderer_TemplateError(t *testing.T) {
	renderer, logs := newRenderer(t)
	rec := httptest.NewRecorder()

	// index espera CategoryCount; un string no tiene ese campo.
	renderer.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "index", "not a page")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "<html")
	require.Contains(t, logs.String(), "render template")
}

func TestRenderer_ServerError(t *testing.T) {
	renderer, logs := newRenderer(t)
	rec := httptest.NewRecorder()

	renderer.ServerError(rec, httptest.NewRequest(http.MethodGet, "/category", nil), errors.New("connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection refused")
	require.Contains(t, logs.String(), "connection refused")
}

func TestStatic(t *testing.T) {
	rec := httptest.NewRecorder()

	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), ".errors")
}
