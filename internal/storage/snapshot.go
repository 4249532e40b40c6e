package storage

import "time"

// Snapshot is a full copy of the business data, used by backups.
type Snapshot struct {
	CreatedAt      time.Time            `json:"createdAt"`
	Repairs        []Repair             `json:"repairs"`
	Parts          []Part               `json:"parts"`
	Transactions   []Transaction        `json:"transactions"`
	Executors      []Executor           `json:"executors"`
	Counterparties []Counterparty       `json:"counterparties"`
	Categories     []Category           `json:"categories"`
	Settings       CashRegisterSettings `json:"settings"`
}
