package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lelo88/inventory-app/internal/httpx"
	"github.com/stretchr/testify/require"
)

// stubPinger guarda el contexto del último ping y devuelve err.
type stubPinger struct {
	err   error
	calls int
	ctx   context.Context
}

func (pinger *stubPinger) Ping(ctx context.Context) error {
	pinger.calls++
	pinger.ctx = ctx
	if pinger.err != nil {
		return pinger.err
	}
	return ctx.Err()
}

func TestHandler_Health(t *testing.T) {
	rec := httptest.NewRecorder()

	New(nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	data := decodeData(t, rec)
	require.Equal(t, "ok", data["status"])
	stamp, ok := data["time"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, stamp)
	require.NoError(t, err)
}

func TestHandler_Ready(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name        string
		pinger      *stubPinger
		ctx         context.Context
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "nil pinger",
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "database pool not configured",
		},
		{
			name:        "ping fails",
			pinger:      &stubPinger{err: errors.New("connection refused")},
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "database is not reachable",
		},
		{
			name:        "request already canceled",
			pinger:      &stubPinger{},
			ctx:         canceled,
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "database is not reachable",
		},
		{
			name:       "database answers",
			pinger:     &stubPinger{},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var handler *Handler
			if tt.pinger == nil {
				handler = New(nil)
			} else {
				handler = New(tt.pinger)
			}

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			if tt.ctx != nil {
				req = req.WithContext(tt.ctx)
			}
			rec := httptest.NewRecorder()

			handler.Ready(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMessage != "" {
				resp := decodeResponse(t, rec)
				require.NotNil(t, resp.Error)
				require.Equal(t, "not_ready", resp.Error.Code)
				require.Equal(t, tt.wantMessage, resp.Error.Message)
			} else {
				require.Equal(t, "ready", decodeData(t, rec)["status"])
			}

			if tt.pinger == nil {
				return
			}
			require.Equal(t, 1, tt.pinger.calls)
			deadline, ok := tt.pinger.ctx.Deadline()
			require.True(t, ok)
			require.LessOrEqual(t, time.Until(deadline), readyTimeout)
		})
	}
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) httpx.Response {
	t.Helper()

	var response httpx.Response
	decoder := json.NewDecoder(bytes.NewReader(recorder.Body.Bytes()))
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(&response))
	return response
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	data, ok := decodeResponse(t, recorder).Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", decodeResponse(t, recorder).Data)
	return data
}
