package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Slice(items, Params{Page: 2, PerPage: 2})
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	last := Slice(items, Params{Page: 3, PerPage: 2})
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.Pagination.HasNext)

	beyond := Slice(items, Params{Page: 9, PerPage: 2})
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
}

func TestValidateDefaults(t *testing.T) {
	p := Params{Page: -1, PerPage: 1000}
	p.Validate()
	assert.Equal(t, Params{Page: 1, PerPage: maxPerPage}, p)

	p = Params{}
	p.Validate()
	assert.Equal(t, Params{Page: 1, PerPage: defaultPerPage}, p)
}
