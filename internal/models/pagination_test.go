package models_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		pageSize   int
		totalPages int
		hasNext    bool
	}{
		{name: "Success - Middle page", total: 25, page: 2, pageSize: 10, totalPages: 3, hasNext: true},
		{name: "Success - Last partial page", total: 25, page: 3, pageSize: 10, totalPages: 3, hasNext: false},
		{name: "Success - Exact multiple", total: 20, page: 2, pageSize: 10, totalPages: 2, hasNext: false},
		{name: "Success - Empty listing", total: 0, page: 1, pageSize: 10, totalPages: 0, hasNext: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := models.NewPage([]string{"a"}, tc.total, tc.page, tc.pageSize)

			assert.Equal(t, tc.totalPages, page.TotalPages)
			assert.Equal(t, tc.hasNext, page.HasNext)
			assert.Equal(t, tc.pageSize, page.PageSize)
		})
	}

	t.Run("Success - Nil data encodes as empty list", func(t *testing.T) {
		page := models.NewPage[*models.Order](nil, 0, 1, 10)

		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})
}
