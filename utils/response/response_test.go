package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 10, 35)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 10, meta.PerPage)
	assert.Equal(t, int64(35), meta.Total)
	assert.Equal(t, 4, meta.TotalPages)

	exact := CalculatePagination(1, 10, 30)
	assert.Equal(t, 3, exact.TotalPages)

	empty := CalculatePagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestCalculatePaginationNormalizesInput(t *testing.T) {
	meta := CalculatePagination(0, -5, 100)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 10, meta.PerPage)

	capped := CalculatePagination(1, 500, 1000)
	assert.Equal(t, 100, capped.PerPage)
	assert.Equal(t, 10, capped.TotalPages)
}
