package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
)

// APIKeyManager holds the keys allowed to submit grading work. Keys are
// loaded from configuration at startup; new ones can be minted at runtime.
type APIKeyManager struct {
	keys map[string]string // key -> description
	mu   sync.RWMutex
}

// NewAPIKeyManager creates a manager preloaded with the given keys.
func NewAPIKeyManager(keys []string) *APIKeyManager {
	m := &APIKeyManager{keys: make(map[string]string, len(keys))}
	for _, k := range keys {
		if k != "" {
			m.keys[k] = "configured"
		}
	}
	return m
}

// GenerateAPIKey mints and registers a new API key.
func (m *APIKeyManager) GenerateAPIKey(description string) (string, error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", err
	}

	apiKey := base64.URLEncoding.EncodeToString(keyBytes)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[apiKey] = description
	return apiKey, nil
}

// ValidateAPIKey reports whether apiKey is registered.
func (m *APIKeyManager) ValidateAPIKey(apiKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for k := range m.keys {
		if SecureCompare(k, apiKey) {
			return true
		}
	}
	return false
}

// RevokeAPIKey removes an API key.
func (m *APIKeyManager) RevokeAPIKey(apiKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, apiKey)
}

// Enabled reports whether any keys are configured. With no keys the API
// runs open, which suits local development.
func (m *APIKeyManager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys) > 0
}

// Middleware rejects requests without a valid key. Health and metrics stay
// reachable for probes and scrapers.
func (m *APIKeyManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() || r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-API-Key")
		if key == "" {
			if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
				key = strings.TrimPrefix(bearer, "Bearer ")
			}
		}

		if key == "" || !m.ValidateAPIKey(key) {
			http.Error(w, "invalid or missing API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SecureCompare performs constant-time comparison
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
