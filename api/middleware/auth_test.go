package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/dmoura/orderdraft-backend/pkg/auth"
	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "orderdraft-test"}
}

func mintTestToken(t *testing.T) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(authTestConfig(), time.Now(), pkgauth.AccessTokenPayload{
		CompanyID: "10",
		BranchID:  "2",
		UserID:    "77",
	})
	require.NoError(t, err)
	return token
}

func TestAuthSeedsScope(t *testing.T) {
	t.Parallel()

	var got types.RequestScope
	handler := Auth(authTestConfig(), logger.New(logger.Options{ServiceName: "test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = ScopeFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	token := mintTestToken(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", got.CompanyID)
	assert.Equal(t, "2", got.BranchID)
	assert.Equal(t, "77", got.UserID)
	assert.Equal(t, token, got.Token)
	assert.NotEmpty(t, got.SessionID)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	handler := Auth(authTestConfig(), logger.New(logger.Options{ServiceName: "test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without credentials")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadToken(t *testing.T) {
	t.Parallel()

	handler := Auth(authTestConfig(), logger.New(logger.Options{ServiceName: "test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run with a bad token")
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
