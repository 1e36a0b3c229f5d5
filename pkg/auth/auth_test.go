package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyValidation(t *testing.T) {
	m := NewAPIKeyManager([]string{"key-one"})

	if !m.ValidateAPIKey("key-one") {
		t.Error("Expected configured key to validate")
	}
	if m.ValidateAPIKey("key-two") {
		t.Error("Expected unknown key to fail")
	}

	generated, err := m.GenerateAPIKey("ci")
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	if !m.ValidateAPIKey(generated) {
		t.Error("Expected generated key to validate")
	}

	m.RevokeAPIKey(generated)
	if m.ValidateAPIKey(generated) {
		t.Error("Expected revoked key to fail")
	}
}

func TestMiddleware(t *testing.T) {
	m := NewAPIKeyManager([]string{"secret"})
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"missing key", "/analyze-solution", nil, http.StatusUnauthorized},
		{"wrong key", "/analyze-solution", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"valid header key", "/analyze-solution", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"valid bearer key", "/analyze-solution", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"health exempt", "/health", nil, http.StatusOK},
		{"metrics exempt", "/metrics", nil, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tc.path, nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("Expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestMiddlewareDisabledWhenNoKeys(t *testing.T) {
	m := NewAPIKeyManager(nil)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/grade-submission", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected open access with no keys, got %d", rec.Code)
	}
}
