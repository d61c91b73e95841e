package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaymentTypes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transaction/payment-types", nil)
	w := httptest.NewRecorder()

	NewPaymentHandler(respondJSON).GetPaymentTypes(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, []string{"cash", "card", "upi"}, body.Data)
}
