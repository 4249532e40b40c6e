package cashregister

import (
	"fmt"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

// Accounts reports whether the register books money for this repair.
// Repairs accepted before the register was switched on stay out of the ledger.
func Accounts(st storage.CashRegisterSettings, r storage.Repair) bool {
	if !st.CashRegisterEnabled || st.CashRegisterStartDate == nil {
		return false
	}
	return !r.DateStart.Before(*st.CashRegisterStartDate)
}

// IncomeEntry builds the Прибуток entry for a repair that was just paid.
// Card payments are booked net of the bank commission.
func IncomeEntry(r storage.Repair, st storage.CashRegisterSettings, now time.Time) storage.Transaction {
	t := storage.Transaction{
		Category:     constants.CategoryIncome,
		Description:  fmt.Sprintf("Ремонт №%d", r.ReceiptID),
		PaymentType:  r.PaymentType,
		DateExecuted: now,
		ExecutorName: r.Executor,
		RepairID:     &r.ID,
	}

	total := money.Round2(r.TotalCost)
	switch r.PaymentType {
	case constants.PaymentCard:
		t.Card = money.Sub(total, money.Percent(total, st.CardCommissionPercent))
	default:
		t.Cash = total
	}
	t.Amount = money.Sum(t.Cash, t.Card)

	return t
}

// CancelEntry reverses whatever net income the ledger holds for the repair.
// It returns nil when there is nothing to reverse.
func CancelEntry(r storage.Repair, posted []storage.Transaction, now time.Time) *storage.Transaction {
	var cash, card []float64
	paymentType := r.PaymentType
	for _, t := range posted {
		if t.Category != constants.CategoryIncome && t.Category != constants.CategoryCancel {
			continue
		}
		cash = append(cash, t.Cash)
		card = append(card, t.Card)
		if t.Category == constants.CategoryIncome && t.PaymentType != "" {
			paymentType = t.PaymentType
		}
	}

	netCash, netCard := money.Sum(cash...), money.Sum(card...)
	if money.IsZero(netCash) && money.IsZero(netCard) {
		return nil
	}

	t := storage.Transaction{
		Category:     constants.CategoryCancel,
		Description:  fmt.Sprintf("Скасування оплати ремонту №%d", r.ReceiptID),
		Cash:         money.Round2(-netCash),
		Card:         money.Round2(-netCard),
		PaymentType:  paymentType,
		DateExecuted: now,
		ExecutorName: r.Executor,
		RepairID:     &r.ID,
	}
	t.Amount = money.Sum(t.Cash, t.Card)

	return &t
}

// AdjustmentEntry returns the Коригування entry that moves current balances to
// the counted amounts, or nil when they already match.
func AdjustmentEntry(current storage.Balances, actualCash, actualCard float64, description string, now time.Time) *storage.Transaction {
	dCash := money.Sub(money.Round2(actualCash), current.Cash)
	dCard := money.Sub(money.Round2(actualCard), current.Card)
	if money.IsZero(dCash) && money.IsZero(dCard) {
		return nil
	}

	if description == "" {
		description = "Звірка каси"
	}

	t := &storage.Transaction{
		Category:     constants.CategoryAdjustment,
		Description:  description,
		Cash:         dCash,
		Card:         dCard,
		Amount:       money.Sum(dCash, dCard),
		DateExecuted: now,
	}
	switch {
	case money.IsZero(dCard):
		t.PaymentType = constants.PaymentCash
	case money.IsZero(dCash):
		t.PaymentType = constants.PaymentCard
	}

	return t
}

// ColumnEntry puts a signed amount into the column of the payment type.
func ColumnEntry(category, description string, amount float64, paymentType string, now time.Time) storage.Transaction {
	t := storage.Transaction{
		Category:     category,
		Description:  description,
		Amount:       money.Round2(amount),
		PaymentType:  paymentType,
		DateExecuted: now,
	}
	if paymentType == constants.PaymentCard {
		t.Card = t.Amount
	} else {
		t.Cash = t.Amount
	}
	return t
}
