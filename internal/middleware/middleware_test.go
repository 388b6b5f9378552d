package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		headerID  string
		checkFunc func(t *testing.T, id string)
	}{
		{
			name:     "keeps incoming id",
			headerID: "incoming-id",
			checkFunc: func(t *testing.T, id string) {
				assert.Equal(t, "incoming-id", id)
			},
		},
		{
			name: "generates id",
			checkFunc: func(t *testing.T, id string) {
				assert.Len(t, id, 36)
			},
		},
		{
			name:     "replaces id with forbidden characters",
			headerID: "bad id\"}",
			checkFunc: func(t *testing.T, id string) {
				assert.Len(t, id, 36)
			},
		},
		{
			name:     "replaces overlong id",
			headerID: strings.Repeat("a", 65),
			checkFunc: func(t *testing.T, id string) {
				assert.Len(t, id, 36)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.headerID != "" {
				req.Header.Set("X-Request-ID", tt.headerID)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			tt.checkFunc(t, seen)
			assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", GetRequestID(req.Context()))
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name                string
		allowed             []string
		origin              string
		method              string
		expectedOrigin      string
		expectedCredentials string
		expectedStatus      int
	}{
		{name: "wildcard answers star without credentials", allowed: []string{"*"}, origin: "https://evil.example", method: http.MethodGet, expectedOrigin: "*", expectedCredentials: "", expectedStatus: http.StatusOK},
		{name: "listed origin", allowed: []string{"http://app.example"}, origin: "HTTP://APP.EXAMPLE", method: http.MethodGet, expectedOrigin: "HTTP://APP.EXAMPLE", expectedCredentials: "true", expectedStatus: http.StatusOK},
		{name: "listed origin next to wildcard", allowed: []string{"*", "http://app.example"}, origin: "http://app.example", method: http.MethodGet, expectedOrigin: "http://app.example", expectedCredentials: "true", expectedStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"http://app.example"}, origin: "http://evil.example", method: http.MethodGet, expectedOrigin: "", expectedCredentials: "", expectedStatus: http.StatusOK},
		{name: "no origin", allowed: []string{"*"}, origin: "", method: http.MethodGet, expectedOrigin: "", expectedCredentials: "", expectedStatus: http.StatusOK},
		{name: "preflight", allowed: []string{"http://app.example"}, origin: "http://app.example", method: http.MethodOptions, expectedOrigin: "http://app.example", expectedCredentials: "true", expectedStatus: http.StatusNoContent},
		{name: "wildcard preflight", allowed: []string{"*"}, origin: "http://app.example", method: http.MethodOptions, expectedOrigin: "*", expectedCredentials: "", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORSMiddleware(tt.allowed)(okHandler)
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedCredentials, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(8)(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=bob&password=secret1")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("a=b")))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Requests without a body are never limited
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private-page-admin-editors", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestSizeLimitMiddleware_UnknownLength(t *testing.T) {
	var parseErr error
	handler := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parseErr = r.ParseForm()
	}))

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("username=bob&password=secret1"))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Error(t, parseErr)
}
