package cashregister

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

var (
	ErrRegisterLocked     = errors.New("cash register cannot be disabled once enabled")
	ErrInvalidCommission  = errors.New("card commission must be between 0 and 100")
	ErrSystemCategory     = errors.New("system category is managed by the server")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrInvalidAmount      = errors.New("amount must not be zero")
	ErrInvalidPaymentType = errors.New("payment type must be cash or card")
)

type Storage interface {
	GetBalances(ctx context.Context) (storage.Balances, error)
	ReconcileTx(ctx context.Context, adjust func(current storage.Balances) (*storage.Transaction, error)) (storage.Balances, *storage.Transaction, error)
	GetCashRegisterSettings(ctx context.Context) (*storage.CashRegisterSettings, error)
	SaveCashRegisterSettings(ctx context.Context, st storage.CashRegisterSettings) error
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]storage.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*storage.Transaction, error)
	CreateTransaction(ctx context.Context, t storage.Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetCategoryByName(ctx context.Context, name string) (*storage.Category, error)
}

type CashRegisterService struct {
	storage Storage
	now     func() time.Time
}

func NewCashRegisterService(storage Storage) *CashRegisterService {
	return &CashRegisterService{storage: storage, now: time.Now}
}

func (s *CashRegisterService) Balances(ctx context.Context) (storage.Balances, error) {
	return s.storage.GetBalances(ctx)
}

type ReconcileResult struct {
	Balances   storage.Balances     `json:"balances"`
	Adjustment *storage.Transaction `json:"adjustment"`
}

// Reconcile aligns the ledger with the counted cash and card totals.
func (s *CashRegisterService) Reconcile(ctx context.Context, actualCash, actualCard float64, description string) (*ReconcileResult, error) {
	const op = "service.cashregister.Reconcile"

	now := s.now()
	balances, entry, err := s.storage.ReconcileTx(ctx, func(current storage.Balances) (*storage.Transaction, error) {
		return AdjustmentEntry(current, actualCash, actualCard, description, now), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ReconcileResult{Balances: balances, Adjustment: entry}, nil
}

func (s *CashRegisterService) Settings(ctx context.Context) (*storage.CashRegisterSettings, error) {
	return s.storage.GetCashRegisterSettings(ctx)
}

type SettingsUpdate struct {
	CardCommissionPercent *float64 `json:"cardCommissionPercent"`
	CashRegisterEnabled   *bool    `json:"cashRegisterEnabled"`
}

// UpdateSettings changes the commission and switches the register on.
// Switching on stamps the start date; switching off is refused.
func (s *CashRegisterService) UpdateSettings(ctx context.Context, upd SettingsUpdate) (*storage.CashRegisterSettings, error) {
	const op = "service.cashregister.UpdateSettings"

	st, err := s.storage.GetCashRegisterSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.CardCommissionPercent != nil {
		pct := *upd.CardCommissionPercent
		if pct < 0 || pct > 100 || math.IsNaN(pct) {
			return nil, ErrInvalidCommission
		}
		st.CardCommissionPercent = money.Round2(pct)
	}

	if upd.CashRegisterEnabled != nil {
		switch {
		case *upd.CashRegisterEnabled && !st.CashRegisterEnabled:
			now := s.now()
			st.CashRegisterEnabled = true
			st.CashRegisterStartDate = &now
		case !*upd.CashRegisterEnabled && st.CashRegisterEnabled:
			return nil, ErrRegisterLocked
		}
	}

	if err := s.storage.SaveCashRegisterSettings(ctx, *st); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

type ManualTransaction struct {
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Amount       float64    `json:"amount"`
	PaymentType  string     `json:"paymentType"`
	DateExecuted *time.Time `json:"dateExecuted"`
	ExecutorName string     `json:"executorName"`
}

// CreateTransaction books a user-category entry. The sign follows the
// category kind, so callers send the amount as a positive number.
func (s *CashRegisterService) CreateTransaction(ctx context.Context, in ManualTransaction) (*storage.Transaction, error) {
	const op = "service.cashregister.CreateTransaction"

	if constants.IsSystemCategory(in.Category) {
		return nil, ErrSystemCategory
	}
	if !constants.IsPaymentType(in.PaymentType) {
		return nil, ErrInvalidPaymentType
	}
	amount := math.Abs(money.Round2(in.Amount))
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	cat, err := s.storage.GetCategoryByName(ctx, in.Category)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cat.Kind == constants.CategoryKindExpense {
		amount = -amount
	}

	date := s.now()
	if in.DateExecuted != nil {
		date = *in.DateExecuted
	}

	t := ColumnEntry(cat.Name, in.Description, amount, in.PaymentType, date)
	t.ExecutorName = in.ExecutorName

	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t.ID = id

	return &t, nil
}

func (s *CashRegisterService) ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]storage.Transaction, error) {
	return s.storage.ListTransactions(ctx, f)
}

// DeleteTransaction removes a manual entry. Entries posted by the server
// are part of the repair and warehouse history and stay.
func (s *CashRegisterService) DeleteTransaction(ctx context.Context, id int64) error {
	const op = "service.cashregister.DeleteTransaction"

	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if constants.IsSystemCategory(t.Category) {
		return ErrSystemCategory
	}

	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
