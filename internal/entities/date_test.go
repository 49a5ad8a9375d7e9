package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1882-01-18")
	require.NoError(t, err)
	assert.Equal(t, 1882, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 18, d.Day())

	_, err = ParseDate("18/01/1882")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2001, time.September, 9)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2001-09-09"`, string(data))

	var decoded Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, d.String(), decoded.String())

	assert.Error(t, json.Unmarshal([]byte(`20010909`), &decoded))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1990, 5, 1, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "1990-05-01", d.String())

	require.NoError(t, d.Scan("1990-05-02 00:00:00+00:00"))
	assert.Equal(t, "1990-05-02", d.String())

	require.NoError(t, d.Scan([]byte("1990-05-03")))
	assert.Equal(t, "1990-05-03", d.String())

	assert.Error(t, d.Scan(42))
}

func TestBook_AuthorNames(t *testing.T) {
	book := Book{Title: "Good Omens", Authors: []Author{{Name: "Neil Gaiman"}, {Name: "Terry Pratchett"}}}
	assert.Equal(t, []string{"Neil Gaiman", "Terry Pratchett"}, book.AuthorNames())
	assert.Equal(t, "Good Omens", book.String())
	assert.Empty(t, Book{}.AuthorNames())
}
