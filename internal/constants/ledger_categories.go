package constants

// Системные категории кассы
const (
	CategoryIncome     = "Прибуток"
	CategoryPurchase   = "Покупка"
	CategoryCancel     = "Скасування"
	CategoryWriteOff   = "Списання"
	CategoryAdjustment = "Коригування"
)

var SystemCategories = []string{
	CategoryIncome,
	CategoryPurchase,
	CategoryCancel,
	CategoryWriteOff,
	CategoryAdjustment,
}

// IsSystemCategory reports whether the category is posted by the server itself
// and therefore cannot be created or deleted by hand.
func IsSystemCategory(c string) bool {
	for _, s := range SystemCategories {
		if s == c {
			return true
		}
	}
	return false
}

// Типы пользовательских категорий
const (
	CategoryKindExpense = "expense"
	CategoryKindIncome  = "income"
)
