package storage

type Executor struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	SalaryPercent   float64 `json:"salaryPercent"`
	ProductsPercent float64 `json:"productsPercent"`
	Icon            string  `json:"icon"`
	Color           string  `json:"color"`
}

type Counterparty struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}
