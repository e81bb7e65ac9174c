package enums

import "fmt"

// ExpenseCategory classifies a trip-scoped cost line item.
type ExpenseCategory string

const (
	ExpenseCategoryFuel      ExpenseCategory = "fuel"
	ExpenseCategoryTolls     ExpenseCategory = "tolls"
	ExpenseCategoryRepairs   ExpenseCategory = "repairs"
	ExpenseCategoryLodging   ExpenseCategory = "lodging"
	ExpenseCategoryInsurance ExpenseCategory = "insurance"
	ExpenseCategoryMisc      ExpenseCategory = "misc"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryFuel,
	ExpenseCategoryTolls,
	ExpenseCategoryRepairs,
	ExpenseCategoryLodging,
	ExpenseCategoryInsurance,
	ExpenseCategoryMisc,
}

// String implements fmt.Stringer.
func (c ExpenseCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ExpenseCategory.
func (c ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}

// RequiresLabel reports whether the category needs a custom label.
func (c ExpenseCategory) RequiresLabel() bool {
	return c == ExpenseCategoryMisc
}
