package dto_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/infrastructure/http/v1/dto"
)

func bindJSON(t *testing.T, body string, obj any) error {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(obj)
}

func TestAdjustStockRequestBinding(t *testing.T) {
	// Zero and negative quantities must survive binding so the stock
	// service sees them: increase treats qty <= 0 as a no-op returning
	// the current record, decrease rejects it with a validation error.
	for _, qty := range []string{"0", "-2", "7"} {
		var req dto.AdjustStockRequest
		require.NoError(t, bindJSON(t, `{"quantity":`+qty+`}`, &req))
	}

	var req dto.AdjustStockRequest
	require.NoError(t, bindJSON(t, `{"quantity":0}`, &req))
	assert.Equal(t, 0, req.Quantity)
}

func TestCreateStockRequestBinding(t *testing.T) {
	var req dto.CreateStockRequest
	err := bindJSON(t, `{"quantity":5}`, &req)
	require.Error(t, err, "product id stays required")

	req = dto.CreateStockRequest{}
	require.NoError(t, bindJSON(t, `{"productId":"0198c0de-0000-7000-8000-000000000001","quantity":5}`, &req))
	assert.Equal(t, 5, req.Quantity)
}
