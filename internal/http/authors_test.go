package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/config"
)

func TestAuthorsCreate(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)

	w := env.do(http.MethodPost, "/api/authors/", map[string]any{
		"name":       "Ursula K. Le Guin",
		"email":      "ursula@example.com",
		"birth_date": "1929-10-21",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeMap(t, w)
	assert.Equal(t, "Ursula K. Le Guin", body["name"])
	assert.Equal(t, "ursula@example.com", body["email"])
	assert.Equal(t, "", body["bio"])
	assert.Equal(t, "1929-10-21", body["birth_date"])
	assert.NotZero(t, body["id"])

	count, err := env.authors.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAuthorsCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		field   string
		message string
	}{
		{"missing name", map[string]any{"bio": "x"}, "name", "This field is required."},
		{"null name", map[string]any{"name": nil}, "name", "This field may not be null."},
		{"bad email", map[string]any{"name": "A", "email": "not-an-email"}, "email", "Enter a valid email address."},
		{"long name", map[string]any{"name": strings.Repeat("a", 101)}, "name", "Ensure this field has no more than 100 characters."},
		{"bad date", map[string]any{"name": "A", "birth_date": "21/10/1929"}, "birth_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupEnv(t, config.AuthModeNone)

			w := env.do(http.MethodPost, "/api/authors/", tt.payload, "")

			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, []any{tt.message}, decodeMap(t, w)[tt.field])

			count, err := env.authors.Count()
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestAuthorsCreateMalformedJSON(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)

	req := httptest.NewRequest(http.MethodPost, "/api/authors/", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w)["detail"], "JSON parse error")
}

func TestAuthorsCreateForm(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)

	req := httptest.NewRequest(http.MethodPost, "/api/authors/", strings.NewReader("name=Italo+Calvino&bio=Cosmicomics"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Italo Calvino", decodeMap(t, w)["name"])
}

func TestAuthorsListPagination(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)
	env.createAuthor(t, "Anne Carson")
	env.createAuthor(t, "Bruno Schulz")
	env.createAuthor(t, "Clarice Lispector")

	w := env.do(http.MethodGet, "/api/authors/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, "http://example.com/api/authors/?page=2", body["next"])
	assert.Nil(t, body["previous"])
	assert.Equal(t, []string{"Anne Carson", "Bruno Schulz"}, titles(t, body["results"].([]any), "name"))

	w = env.do(http.MethodGet, "/api/authors/?page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeMap(t, w)
	assert.Nil(t, body["next"])
	assert.Equal(t, "http://example.com/api/authors/", body["previous"])
	assert.Equal(t, []string{"Clarice Lispector"}, titles(t, body["results"].([]any), "name"))

	w = env.do(http.MethodGet, "/api/authors/?page_size=5", nil, "")
	assert.Len(t, results(t, w), 3)

	for _, page := range []string{"3", "0", "abc"} {
		w = env.do(http.MethodGet, "/api/authors/?page="+page, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, page)
		assert.Equal(t, "Invalid page.", decodeMap(t, w)["detail"])
	}
}

func TestAuthorsListSearchAndOrdering(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)
	env.createAuthor(t, "Jane Austen")
	env.createAuthor(t, "Charles Dickens")
	env.createAuthor(t, "Emily Bronte")

	w := env.do(http.MethodGet, "/api/authors/?search=AUSTEN", nil, "")
	assert.Equal(t, []string{"Jane Austen"}, titles(t, results(t, w), "name"))

	w = env.do(http.MethodGet, "/api/authors/?ordering=-name&page_size=5", nil, "")
	assert.Equal(t, []string{"Jane Austen", "Emily Bronte", "Charles Dickens"}, titles(t, results(t, w), "name"))

	w = env.do(http.MethodGet, "/api/authors/?ordering=favourite_colour&page_size=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Charles Dickens", "Emily Bronte", "Jane Austen"}, titles(t, results(t, w), "name"))
}

func TestAuthorsRetrieve(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)
	author := env.createAuthor(t, "Jorge Luis Borges")

	w := env.do(http.MethodGet, "/api/authors/"+itoa(author.ID)+"/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "Jorge Luis Borges", body["name"])
	assert.Nil(t, body["email"])
	assert.Nil(t, body["birth_date"])

	for _, path := range []string{"/api/authors/999/", "/api/authors/abc/"} {
		w = env.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, DetailNotFound, decodeMap(t, w)["detail"])
	}
}

func TestAuthorsPartialUpdate(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)
	author := env.createAuthor(t, "Franz Kafka")
	path := "/api/authors/" + itoa(author.ID) + "/"

	w := env.do(http.MethodPatch, path, map[string]any{"bio": "Prague"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeMap(t, w)
	assert.Equal(t, "Franz Kafka", body["name"])
	assert.Equal(t, "Prague", body["bio"])

	w = env.do(http.MethodPatch, path, map[string]any{"email": "nope"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := env.authors.GetByID(author.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Email)
	assert.Equal(t, "Prague", stored.Bio)
}

func TestAuthorsUpdateRequiresName(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)
	author := env.createAuthor(t, "Virginia Woolf")
	path := "/api/authors/" + itoa(author.ID) + "/"

	w := env.do(http.MethodPut, path, map[string]any{"bio": "Bloomsbury"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"This field is required."}, decodeMap(t, w)["name"])

	w = env.do(http.MethodPut, path, map[string]any{"name": "Adeline Virginia Woolf"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Adeline Virginia Woolf", decodeMap(t, w)["name"])
}

func TestAuthorsDeleteKeepsBooks(t *testing.T) {
	env := setupEnv(t, config.AuthModeNone)
	author := env.createAuthor(t, "Mary Shelley")
	book := env.createBook(t, "Frankenstein", "Gothic", "", author.ID)

	w := env.do(http.MethodDelete, "/api/authors/"+itoa(author.ID)+"/", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	stored, err := env.books.GetByID(book.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Authors)

	w = env.do(http.MethodDelete, "/api/authors/"+itoa(author.ID)+"/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
