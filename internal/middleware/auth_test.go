package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return RequireAdmin(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetAdminFromContext(r.Context())
		require.NotNil(t, claims)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAdmin(t *testing.T) {
	handler := protectedHandler(t)

	validToken, err := GenerateAdminToken(testSecret, "admin@taakra.com", time.Hour)
	require.NoError(t, err)

	expiredToken, err := GenerateAdminToken(testSecret, "admin@taakra.com", -time.Hour)
	require.NoError(t, err)

	wrongKeyToken, err := GenerateAdminToken("other-secret", "admin@taakra.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		want       int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"wrong signing key", "Bearer " + wrongKeyToken, http.StatusUnauthorized},
		{"valid token", "Bearer " + validToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)

			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

func TestAdminClaimsInContext(t *testing.T) {
	token, err := GenerateAdminToken(testSecret, "admin@taakra.com", time.Hour)
	require.NoError(t, err)

	var email string
	handler := RequireAdmin(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email = GetAdminFromContext(r.Context()).Email
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "admin@taakra.com", email)
}
