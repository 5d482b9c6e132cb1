package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	tests := []struct {
		name, allowed, origin, method string
		wantOrigin                    string
		wantStatus                    int
	}{
		{"reflect any", "", "http://a.test", http.MethodPost, "http://a.test", http.StatusTeapot},
		{"wildcard without origin", "", "", http.MethodGet, "*", http.StatusTeapot},
		{"allowed origin", "http://a.test", "http://a.test", http.MethodPost, "http://a.test", http.StatusTeapot},
		{"foreign origin", "http://a.test", "http://b.test", http.MethodPost, "", http.StatusTeapot},
		{"preflight", "", "http://a.test", http.MethodOptions, "http://a.test", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(next).ServeHTTP(rec, req)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
