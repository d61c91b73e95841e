package domain

type Category string

const (
	CategoryExpense    Category = "expense"
	CategorySaving     Category = "saving"
	CategoryInvestment Category = "investment"
)

var categories = []Category{CategoryExpense, CategorySaving, CategoryInvestment}

// Categories lists the accepted categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}
