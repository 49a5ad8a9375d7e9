package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginator_Page(t *testing.T) {
	p := Paginator{PageSize: 10, MaxPageSize: 50}

	t.Run("defaults", func(t *testing.T) {
		pg, err := p.Page(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, Page{Number: 1, Size: 10}, pg)
		assert.Equal(t, 0, pg.Offset())
	})

	t.Run("page size is capped and validated", func(t *testing.T) {
		pg, err := p.Page(url.Values{"page": {"3"}, "page_size": {"500"}})
		require.NoError(t, err)
		assert.Equal(t, 50, pg.Size)
		assert.Equal(t, 100, pg.Offset())

		pg, err = p.Page(url.Values{"page_size": {"-2"}})
		require.NoError(t, err)
		assert.Equal(t, 10, pg.Size)
	})

	t.Run("invalid page numbers", func(t *testing.T) {
		for _, raw := range []string{"0", "-1", "two"} {
			_, err := p.Page(url.Values{"page": {raw}})
			assert.ErrorIs(t, err, ErrInvalidPage, raw)
		}
	})
}

func TestPage_Resolve(t *testing.T) {
	pg := Page{Number: 1, Size: 10}
	assert.NoError(t, pg.Resolve(0))

	pg = Page{Number: 3, Size: 10}
	assert.NoError(t, pg.Resolve(21))
	assert.ErrorIs(t, pg.Resolve(20), ErrInvalidPage)

	pg = Page{Number: lastPage, Size: 10}
	require.NoError(t, pg.Resolve(35))
	assert.Equal(t, 4, pg.Number)
}

func TestNewEnvelope(t *testing.T) {
	u, err := url.Parse("http://example.com/api/books/?page=2&search=ring")
	require.NoError(t, err)

	env := NewEnvelope(u, Page{Number: 2, Size: 10}, 25, []string{"a"})
	assert.Equal(t, int64(25), env.Count)
	require.NotNil(t, env.Next)
	require.NotNil(t, env.Previous)
	assert.Equal(t, "http://example.com/api/books/?page=3&search=ring", *env.Next)
	assert.Equal(t, "http://example.com/api/books/?search=ring", *env.Previous)

	last := NewEnvelope[string](u, Page{Number: 1, Size: 10}, 0, nil)
	assert.Nil(t, last.Next)
	assert.Nil(t, last.Previous)
	assert.NotNil(t, last.Results)
}
