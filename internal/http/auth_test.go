package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
)

func (env *testEnv) userToken(t *testing.T, username string, role entities.UserRole) string {
	t.Helper()
	user, err := env.auth.CreateUser(username, username+"@example.com", testPassword, role)
	require.NoError(t, err)
	token, err := env.auth.GenerateToken(user.ID)
	require.NoError(t, err)
	return token
}

func TestLocalAuthAnonymousReadsAreAllowed(t *testing.T) {
	env := setupEnv(t, config.AuthModeLocal)
	env.createBook(t, "Neuromancer", "Cyberpunk", "")

	w := env.do(http.MethodGet, "/api/books/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/books/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Neuromancer")
}

func TestLocalAuthAnonymousWritesAreRejected(t *testing.T) {
	env := setupEnv(t, config.AuthModeLocal)

	w := env.do(http.MethodPost, "/api/books/", map[string]any{"title": "Count Zero"}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.DetailNotAuthenticated, decodeMap(t, w)["detail"])
	count, err := env.books.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLocalAuthBearerRoles(t *testing.T) {
	env := setupEnv(t, config.AuthModeLocal)
	editor := env.userToken(t, "editor", entities.UserRoleEditor)
	viewer := env.userToken(t, "viewer", entities.UserRoleViewer)
	admin := env.userToken(t, "admin", entities.UserRoleAdmin)

	w := env.do(http.MethodPost, "/api/authors/", map[string]any{"name": "William Gibson"}, editor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/api/authors/", map[string]any{"name": "Bruce Sterling"}, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, auth.DetailPermissionDenied, decodeMap(t, w)["detail"])

	w = env.do(http.MethodGet, "/api/authors/", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.DetailInvalidToken, decodeMap(t, w)["detail"])

	w = env.do(http.MethodGet, "/api/audit/", nil, editor)
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.audit.Wait()
	w = env.do(http.MethodGet, "/api/audit/", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	events := results(t, w)
	require.Len(t, events, 1)
	assert.NotZero(t, events[0].(map[string]any)["user_id"])
}

func TestLocalAuthTokenEndpoint(t *testing.T) {
	env := setupEnv(t, config.AuthModeLocal)
	token := env.userToken(t, "reader", entities.UserRoleViewer)

	w := env.do(http.MethodPost, "/api/auth/token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/auth/token", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	fresh, _ := decodeMap(t, w)["token"].(string)
	require.NotEmpty(t, fresh)

	// The old token was replaced.
	w = env.do(http.MethodGet, "/api/books/", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodDelete, "/api/auth/token", nil, fresh)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/api/books/", nil, fresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLocalAuthLoginPage(t *testing.T) {
	env := setupEnv(t, config.AuthModeLocal)

	w := env.do(http.MethodGet, "/login", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="csrf_token"`)
	assert.Contains(t, w.Body.String(), "create-user")
}
