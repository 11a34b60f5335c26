package models

// Default category names used by the built-in taxonomy.
const (
	CategoryFoodDining    = "Food & Dining"
	CategoryShopping      = "Shopping"
	CategoryTransport     = "Transportation"
	CategoryBills         = "Bills & Utilities"
	CategoryEntertainment = "Entertainment"
	CategoryHealth        = "Healthcare"
	CategoryTravel        = "Travel"
	CategoryIncome        = "Income"
	CategoryTransfers     = "Transfers"
	CategoryCash          = "Cash"
	CategoryOther         = "Other"
)

// CategoryConfig represents a category configuration in the YAML file
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoriesConfig represents the structure of the categories YAML file
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}
