package interfaces

import (
	"net/http"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

type PaymentHandler struct {
	respondJSON func(w http.ResponseWriter, status int, payload interface{})
}

func NewPaymentHandler(respondJSON func(w http.ResponseWriter, status int, payload interface{})) *PaymentHandler {
	if respondJSON == nil {
		panic("Response function must not be nil")
	}
	return &PaymentHandler{respondJSON: respondJSON}
}

func (h *PaymentHandler) GetPaymentTypes(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Payment types fetched successfully",
		"data":    domain.PaymentTypes(),
	})
}
