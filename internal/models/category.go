package models

// Category is a structured spending or income class.
type Category struct {
	ID   uint            `gorm:"primaryKey" json:"id"`
	Name string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Type TransactionType `gorm:"type:varchar(16);not null" json:"type"`
}

// DefaultCategories is the seed set, in display order.
func DefaultCategories() []Category {
	expense := []string{
		CategoryHousing, CategoryDogs, CategoryFood, CategoryTransport,
		CategoryHealth, CategoryLeisure, CategoryStreaming, CategorySubscriptions,
		CategoryShopping, CategoryEducation, CategoryFinancialFees,
		CategoryServices, CategoryInvestments,
	}
	out := make([]Category, 0, len(expense)+3)
	for _, name := range expense {
		out = append(out, Category{Name: name, Type: TypeExpense})
	}
	out = append(out,
		Category{Name: CategorySalary, Type: TypeIncome},
		Category{Name: CategoryOtherIncome, Type: TypeIncome},
		Category{Name: CategoryUncategorized, Type: TypeExpense},
	)
	return out
}

// DefaultCategoryNames lists the names of DefaultCategories.
func DefaultCategoryNames() []string {
	cats := DefaultCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}

// ResolveCategoryName picks the display category of a record: the linked
// category name, then the legacy free-text label, then the sentinel.
func ResolveCategoryName(linked *Category, legacy string) string {
	if linked != nil && linked.Name != "" {
		return linked.Name
	}
	if legacy != "" {
		return legacy
	}
	return CategoryUncategorized
}
