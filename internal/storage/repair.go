package storage

import "time"

type Repair struct {
	ID          int64      `json:"id"`
	ReceiptID   int64      `json:"receiptId"`
	DeviceName  string     `json:"deviceName"`
	FaultDesc   string     `json:"faultDesc"`
	WorkDone    string     `json:"workDone"`
	CostLabor   float64    `json:"costLabor"`
	TotalCost   float64    `json:"totalCost"`
	IsPaid      bool       `json:"isPaid"`
	Status      string     `json:"status"`
	ClientName  string     `json:"clientName"`
	ClientPhone string     `json:"clientPhone"`
	Profit      float64    `json:"profit"`
	DateStart   time.Time  `json:"dateStart"`
	DateEnd     *time.Time `json:"dateEnd"`
	Note        string     `json:"note"`
	ShouldCall  bool       `json:"shouldCall"`
	Executor    string     `json:"executor"`
	PaymentType string     `json:"paymentType"`
}

type RepairFilter struct {
	Search   string
	Statuses []string
	Executor string
	// по дате приёма
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// RepairUpdate is everything that must be written atomically after a repair
// edit: the repair row, the paid flag of its parts and the ledger entries.
type RepairUpdate struct {
	Repair    Repair
	PartsPaid *bool
	SoldAt    *time.Time
	Ledger    []Transaction
}

// IssuedRepair is a paid repair used for executor earnings.
type IssuedRepair struct {
	ID        int64     `json:"id"`
	ReceiptID int64     `json:"receiptId"`
	CostLabor float64   `json:"costLabor"`
	Profit    float64   `json:"profit"`
	DateEnd   time.Time `json:"dateEnd"`
}
