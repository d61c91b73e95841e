package interfaces

import (
	"net/http"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

// CategoryHandler serves the fixed category list so clients can build their pickers from it.
type CategoryHandler struct {
	respondJSON func(w http.ResponseWriter, status int, payload interface{})
}

func NewCategoryHandler(respondJSON func(w http.ResponseWriter, status int, payload interface{})) *CategoryHandler {
	if respondJSON == nil {
		panic("Response function must not be nil")
	}
	return &CategoryHandler{respondJSON: respondJSON}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories fetched successfully",
		"data":    domain.Categories(),
	})
}
