package storage

import (
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
)

type Transaction struct {
	ID           int64     `json:"id"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Cash         float64   `json:"cash"`
	Card         float64   `json:"card"`
	PaymentType  string    `json:"paymentType"`
	DateExecuted time.Time `json:"dateExecuted"`
	ExecutorName string    `json:"executorName,omitempty"`
	RepairID     *int64    `json:"repairId,omitempty"`
}

type TransactionFilter struct {
	From        *time.Time
	To          *time.Time
	Category    string
	PaymentType string
	Limit       int
}

type Balances struct {
	Cash  float64 `json:"cash"`
	Card  float64 `json:"card"`
	Total float64 `json:"total"`
}

// NewBalances rounds both columns to kopecks and adds them up.
func NewBalances(cash, card float64) Balances {
	cash, card = money.Round2(cash), money.Round2(card)
	return Balances{Cash: cash, Card: card, Total: money.Sum(cash, card)}
}

type CashRegisterSettings struct {
	CardCommissionPercent float64    `json:"cardCommissionPercent"`
	CashRegisterEnabled   bool       `json:"cashRegisterEnabled"`
	CashRegisterStartDate *time.Time `json:"cashRegisterStartDate"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}
