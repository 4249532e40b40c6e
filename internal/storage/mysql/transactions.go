package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

const transactionColumns = `id, category, description, amount, cash, card, payment_type, date_executed,
	executor_name, repair_id`

func scanTransaction(row rowScanner) (*storage.Transaction, error) {
	var (
		t        storage.Transaction
		repairID sql.NullInt64
	)

	err := row.Scan(&t.ID, &t.Category, &t.Description, &t.Amount, &t.Cash, &t.Card, &t.PaymentType,
		&t.DateExecuted, &t.ExecutorName, &repairID)
	if err != nil {
		return nil, err
	}
	t.RepairID = intPtr(repairID)

	return &t, nil
}

func insertTransactionsTx(ctx context.Context, tx *sql.Tx, ledger []storage.Transaction) error {
	for _, t := range ledger {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (category, description, amount, cash, card, payment_type, date_executed,
				executor_name, repair_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Category, t.Description, t.Amount, t.Cash, t.Card, t.PaymentType, t.DateExecuted, t.ExecutorName,
			nullInt(t.RepairID))
		if err != nil {
			return fmt.Errorf("ошибка записи операции кассы %q: %w", t.Category, err)
		}
	}

	return nil
}

func (s *Storage) ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]storage.Transaction, error) {
	const op = "storage.mysql.ListTransactions"

	var (
		where []string
		args  []any
	)

	if f.From != nil {
		where = append(where, `date_executed >= ?`)
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, `date_executed <= ?`)
		args = append(args, *f.To)
	}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, f.Category)
	}
	if f.PaymentType != "" {
		where = append(where, `payment_type = ?`)
		args = append(args, f.PaymentType)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date_executed DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения операций кассы: %w", op, err)
	}
	defer rows.Close()

	out := make([]storage.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *t)
	}

	return out, rows.Err()
}

func (s *Storage) GetTransaction(ctx context.Context, id int64) (*storage.Transaction, error) {
	const op = "storage.mysql.GetTransaction"

	t, err := scanTransaction(s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: операция id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// GetRepairLedger returns entries linked to the repair, oldest first.
func (s *Storage) GetRepairLedger(ctx context.Context, repairID int64) ([]storage.Transaction, error) {
	const op = "storage.mysql.GetRepairLedger"

	rows, err := s.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE repair_id = ? ORDER BY id`, repairID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []storage.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *t)
	}

	return out, rows.Err()
}

func (s *Storage) CreateTransaction(ctx context.Context, t storage.Transaction) (int64, error) {
	const op = "storage.mysql.CreateTransaction"

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (category, description, amount, cash, card, payment_type, date_executed,
			executor_name, repair_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Category, t.Description, t.Amount, t.Cash, t.Card, t.PaymentType, t.DateExecuted, t.ExecutorName,
		nullInt(t.RepairID))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.LastInsertId()
}

func (s *Storage) DeleteTransaction(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteTransaction"

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: операция id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}

func balancesQuery(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}) (storage.Balances, error) {
	var cash, card float64
	err := q.QueryRowContext(ctx, `SELECT COALESCE(SUM(cash), 0), COALESCE(SUM(card), 0) FROM transactions`).
		Scan(&cash, &card)
	if err != nil {
		return storage.Balances{}, err
	}

	return storage.NewBalances(cash, card), nil
}

func (s *Storage) GetBalances(ctx context.Context) (storage.Balances, error) {
	const op = "storage.mysql.GetBalances"

	b, err := balancesQuery(ctx, s.db)
	if err != nil {
		return storage.Balances{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// ReconcileTx reads the balances under the settings row lock and lets adjust
// decide the corrective entry. A nil entry writes nothing.
func (s *Storage) ReconcileTx(ctx context.Context, adjust func(current storage.Balances) (*storage.Transaction, error)) (storage.Balances, *storage.Transaction, error) {
	const op = "storage.mysql.ReconcileTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Balances{}, nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var enabled bool
	if err := tx.QueryRowContext(ctx, `SELECT enabled FROM cash_register_settings WHERE id = 1 FOR UPDATE`).Scan(&enabled); err != nil {
		return storage.Balances{}, nil, fmt.Errorf("%s: lock settings: %w", op, err)
	}
	if !enabled {
		return storage.Balances{}, nil, fmt.Errorf("%s: %w", op, storage.ErrRegisterDisabled)
	}

	current, err := balancesQuery(ctx, tx)
	if err != nil {
		return storage.Balances{}, nil, fmt.Errorf("%s: balances: %w", op, err)
	}

	entry, err := adjust(current)
	if err != nil {
		return storage.Balances{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	if entry == nil {
		return current, nil, nil
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (category, description, amount, cash, card, payment_type, date_executed,
			executor_name, repair_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		entry.Category, entry.Description, entry.Amount, entry.Cash, entry.Card, entry.PaymentType,
		entry.DateExecuted, entry.ExecutorName)
	if err != nil {
		return storage.Balances{}, nil, fmt.Errorf("%s: insert adjustment: %w", op, err)
	}
	entry.ID, _ = res.LastInsertId()

	after, err := balancesQuery(ctx, tx)
	if err != nil {
		return storage.Balances{}, nil, fmt.Errorf("%s: balances: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return storage.Balances{}, nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return after, entry, nil
}

func (s *Storage) GetCashRegisterSettings(ctx context.Context) (*storage.CashRegisterSettings, error) {
	const op = "storage.mysql.GetCashRegisterSettings"

	var (
		st    storage.CashRegisterSettings
		start sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT card_commission_percent, enabled, start_date FROM cash_register_settings WHERE id = 1`).
		Scan(&st.CardCommissionPercent, &st.CashRegisterEnabled, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return &storage.CashRegisterSettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	st.CashRegisterStartDate = timePtr(start)

	return &st, nil
}

func (s *Storage) SaveCashRegisterSettings(ctx context.Context, st storage.CashRegisterSettings) error {
	const op = "storage.mysql.SaveCashRegisterSettings"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_register_settings (id, card_commission_percent, enabled, start_date)
		VALUES (1, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			card_commission_percent = VALUES(card_commission_percent),
			enabled = VALUES(enabled),
			start_date = VALUES(start_date)`,
		st.CardCommissionPercent, st.CashRegisterEnabled, nullTime(st.CashRegisterStartDate))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
