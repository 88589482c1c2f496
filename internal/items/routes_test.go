package items

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// pageRecorder guarda qué página se pidió renderizar.
type pageRecorder struct {
	page string
}

func (recorder *pageRecorder) Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any) {
	recorder.page = page
	writer.WriteHeader(status)
}

func (recorder *pageRecorder) Error(writer http.ResponseWriter, request *http.Request, status int, message string) {
	recorder.page = "error"
	writer.WriteHeader(status)
}

func (recorder *pageRecorder) ServerError(writer http.ResponseWriter, request *http.Request, err error) {
	recorder.Error(writer, request, http.StatusInternalServerError, err.Error())
}

func TestRegisterRoutes(t *testing.T) {
	repo := newMemoryItems()
	repo.items[itemID] = Item{ID: itemID, Name: "Backpack", Price: decimal.RequireFromString("10"), CategoryIDs: []string{clothingID}}
	recorder := &pageRecorder{}

	router := chi.NewRouter()
	RegisterRoutes(router, NewHandler(NewService(repo, newCategories()), recorder))

	create := url.Values{
		"name":        {"Gold Chain"},
		"description": {"Gold"},
		"price":       {"695"},
		"stock":       {"2"},
		"category":    {jewelryID},
	}

	tests := []struct {
		name       string
		method     string
		path       string
		form       url.Values
		wantStatus int
		wantPage   string
	}{
		{name: "list", method: http.MethodGet, path: "/item", wantStatus: http.StatusOK, wantPage: "item_list"},
		{name: "create form", method: http.MethodGet, path: "/item/create", wantStatus: http.StatusOK, wantPage: "item_form"},
		{name: "create", method: http.MethodPost, path: "/item/create", form: create, wantStatus: http.StatusFound},
		{name: "create invalid", method: http.MethodPost, path: "/item/create", form: url.Values{}, wantStatus: http.StatusOK, wantPage: "item_form"},
		{name: "detail", method: http.MethodGet, path: "/item/" + itemID, wantStatus: http.StatusOK, wantPage: "item_detail"},
		{name: "update form", method: http.MethodGet, path: "/item/" + itemID + "/update", wantStatus: http.StatusOK, wantPage: "item_form"},
		{name: "update", method: http.MethodPost, path: "/item/" + itemID + "/update", form: create, wantStatus: http.StatusFound},
		{name: "delete form", method: http.MethodGet, path: "/item/" + itemID + "/delete", wantStatus: http.StatusOK, wantPage: "item_delete"},
		{name: "delete", method: http.MethodPost, path: "/item/" + itemID + "/delete", form: url.Values{}, wantStatus: http.StatusFound},
		{name: "delete again", method: http.MethodPost, path: "/item/" + itemID + "/delete", form: url.Values{}, wantStatus: http.StatusFound},
		{name: "detail after delete", method: http.MethodGet, path: "/item/" + itemID, wantStatus: http.StatusNotFound, wantPage: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder.page = ""

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.form.Encode()))
			if tt.form != nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantPage, recorder.page)
		})
	}
}
