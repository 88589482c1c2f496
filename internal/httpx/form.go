package httpx

import (
	"net/http"
	"strings"
)

// Form es el cuerpo urlencoded de un POST ya parseado.
type Form struct {
	values map[string][]string
}

// ParseForm lee el body del request. Sólo considera el body, no la query string.
func ParseForm(request *http.Request) (Form, error) {
	if err := request.ParseForm(); err != nil {
		return Form{}, err
	}
	return Form{values: request.PostForm}, nil
}

// Value devuelve el primer valor de key, recortado. Ausente → "".
func (form Form) Value(key string) string {
	values := form.values[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// List normaliza un campo multi-valor a una lista tipada:
// ausente → vacía, un valor → un elemento, varios → en el orden enviado.
// Los valores vacíos se descartan.
func (form Form) List(key string) []string {
	out := []string{}
	for _, value := range form.values[key] {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
