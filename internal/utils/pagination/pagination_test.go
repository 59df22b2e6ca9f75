package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}},
		{"?page=3&limit=10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"?page=0&limit=-5", Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}},
		{"?page=2&limit=500", Pagination{Page: 2, Limit: MaxLimit, Offset: MaxLimit}},
		{"?page=abc", Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = ParseFromRequest(c)
				return nil
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponse_TotalPages(t *testing.T) {
	body := Response(Pagination{Page: 1, Limit: 10, Total: 21}, []int{})
	meta := body["meta"].(fiber.Map)
	assert.Equal(t, int64(3), meta["total_pages"])
	assert.Equal(t, int64(21), meta["total_items"])
}
