package auth

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
)

func setupRouter(t *testing.T, mode config.AuthMode) (*gin.Engine, *Service) {
	t.Helper()

	svc, _ := setupService(t, mode)
	mw := NewMiddleware(svc, nil, testAuthConfig(mode))

	router := gin.New()
	router.Use(mw.Handler())
	api := router.Group("/api", mw.RequireWrite())
	api.GET("/books/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	api.POST("/books/", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"user": GetUserID(c), "role": GetUserRole(c)})
	})
	admin := router.Group("/api/audit", mw.RequirePermission(PermViewHistory))
	admin.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	return router, svc
}

func doRequest(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestMiddlewareNoneModeAllowsWrites(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeNone)

	w := doRequest(router, http.MethodPost, "/api/books/", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodGet, "/api/audit/", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareLocalModeAnonymous(t *testing.T) {
	router, _ := setupRouter(t, config.AuthModeLocal)

	w := doRequest(router, http.MethodGet, "/api/books/", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/books/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, DetailNotAuthenticated, detail(t, w))
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}

func TestMiddlewareLocalModeTokens(t *testing.T) {
	router, svc := setupRouter(t, config.AuthModeLocal)

	editor := createUser(t, svc, "editor", entities.UserRoleEditor)
	viewer := createUser(t, svc, "viewer", entities.UserRoleViewer)
	editorToken, err := svc.GenerateToken(editor.ID)
	require.NoError(t, err)
	viewerToken, err := svc.GenerateToken(viewer.ID)
	require.NoError(t, err)

	w := doRequest(router, http.MethodPost, "/api/books/", editorToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, editor.ID, body["user"])
	assert.Equal(t, "editor", body["role"])

	w = doRequest(router, http.MethodPost, "/api/books/", viewerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, DetailPermissionDenied, detail(t, w))

	w = doRequest(router, http.MethodGet, "/api/books/", viewerToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/audit/", editorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, "/api/books/", "not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, DetailInvalidToken, detail(t, w))
}

func TestCSRFMiddleware(t *testing.T) {
	svc, _ := setupService(t, config.AuthModeLocal)
	mw := NewMiddleware(svc, nil, testAuthConfig(config.AuthModeLocal))
	editor := createUser(t, svc, "editor", entities.UserRoleEditor)
	token, err := svc.GenerateToken(editor.ID)
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw.Handler(), CSRFMiddleware([]byte(strings.Repeat("k", 32)), false))
	router.POST("/api/books/", func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, http.MethodPost, "/api/books/", token)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, detail(t, w), "CSRF Failed")
}

func TestLoginFlow(t *testing.T) {
	svc, db := setupService(t, config.AuthModeLocal)
	createUser(t, svc, "alice", entities.UserRoleEditor)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	cfg := testAuthConfig(config.AuthModeLocal)
	sessions, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)
	limiter := NewLoginLimiter(cfg)
	t.Cleanup(limiter.Stop)

	recorder := &fakeLoginRecorder{}
	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("login").Parse(`{{.Error}}`)))
	router.Use(sessions.LoadAndSave())
	NewAuthController(svc, sessions, limiter, recorder).RegisterRoutes(router)

	post := func(username, password, next string) *httptest.ResponseRecorder {
		form := url.Values{"username": {username}, "password": {password}, "next": {next}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := post("alice", "definitely-wrong", "/books/")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "correct username and password")

	w = post("alice", testPassword, "//evil.example.com")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionCookieName)

	assert.Equal(t, []bool{false, true}, recorder.outcomes)
}

type fakeLoginRecorder struct {
	outcomes []bool
}

func (f *fakeLoginRecorder) RecordLogin(_ *uint, _, _ string, ok bool) {
	f.outcomes = append(f.outcomes, ok)
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                 "/",
		"/books/":          "/books/",
		"//evil.com":       "/",
		"https://evil.com": "/",
		"books":            "/",
		`/\evil.com`:       "/",
		"/authors/?page=2": "/authors/?page=2",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirect(in), in)
	}
}
