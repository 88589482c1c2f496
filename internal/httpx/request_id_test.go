package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

func TestRequestIDFrom(t *testing.T) {
	require.Equal(t, "", RequestIDFrom(nil))

	tests := []struct {
		name      string
		header    string
		contextID string
		want      string
	}{
		{name: "middleware id wins over header", header: "header-id", contextID: "ctx-id", want: "ctx-id"},
		{name: "header fallback", header: "header-id", want: "header-id"},
		{name: "empty when missing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			if tt.contextID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, tt.contextID))
			}

			require.Equal(t, tt.want, RequestIDFrom(req))
		})
	}
}
