package storage

import "time"

type Part struct {
	ID          int64      `json:"id"`
	Supplier    string     `json:"supplier"`
	Name        string     `json:"name"`
	PriceUah    float64    `json:"priceUah"`
	CostUah     float64    `json:"costUah"`
	Profit      float64    `json:"profit"`
	InStock     bool       `json:"inStock"`
	RepairID    *int64     `json:"repairId"`
	ReceiptID   *int64     `json:"receiptId"`
	Barcode     string     `json:"barcode"`
	ProductCode string     `json:"productCode"`
	IsPaid      bool       `json:"isPaid"`
	DateArrival time.Time  `json:"dateArrival"`
	DateSold    *time.Time `json:"dateSold"`
}

type PartFilter struct {
	Search   string
	Supplier string
	InStock  *bool
	Limit    int
}

// PartGroup collapses identical parts (same name and supplier) into one row.
type PartGroup struct {
	Name     string  `json:"name"`
	Supplier string  `json:"supplier"`
	Quantity int     `json:"quantity"`
	PriceUah float64 `json:"priceUah"`
	CostUah  float64 `json:"costUah"`
	IDs      []int64 `json:"ids"`
}
