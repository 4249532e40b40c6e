package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type rowIterator interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

// collectRows scans every row and closes rows. An interrupted iteration is an
// error, never a short result.
func collectRows[T any](rows rowIterator, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// ExportSnapshot reads every business table inside one read-only
// transaction so the copy is consistent.
func (s *Storage) ExportSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	const op = "storage.mysql.ExportSnapshot"

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	snap := &storage.Snapshot{CreatedAt: time.Now()}

	rows, err := tx.QueryContext(ctx, `SELECT `+repairColumns+` FROM repairs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: repairs: %w", op, err)
	}
	if snap.Repairs, err = collectRows(rows, func(row rowScanner) (storage.Repair, error) {
		r, err := scanRepair(row)
		if err != nil {
			return storage.Repair{}, err
		}
		return *r, nil
	}); err != nil {
		return nil, fmt.Errorf("%s: repairs: %w", op, err)
	}

	rows, err = tx.QueryContext(ctx, `SELECT `+partColumns+` FROM parts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: parts: %w", op, err)
	}
	if snap.Parts, err = collectParts(rows); err != nil {
		return nil, fmt.Errorf("%s: scan part: %w", op, err)
	}

	rows, err = tx.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: transactions: %w", op, err)
	}
	if snap.Transactions, err = collectRows(rows, func(row rowScanner) (storage.Transaction, error) {
		t, err := scanTransaction(row)
		if err != nil {
			return storage.Transaction{}, err
		}
		return *t, nil
	}); err != nil {
		return nil, fmt.Errorf("%s: transactions: %w", op, err)
	}

	rows, err = tx.QueryContext(ctx, `SELECT id, name, salary_percent, products_percent, icon, color FROM executors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: executors: %w", op, err)
	}
	if snap.Executors, err = collectRows(rows, func(row rowScanner) (storage.Executor, error) {
		var e storage.Executor
		err := row.Scan(&e.ID, &e.Name, &e.SalaryPercent, &e.ProductsPercent, &e.Icon, &e.Color)
		return e, err
	}); err != nil {
		return nil, fmt.Errorf("%s: executors: %w", op, err)
	}

	rows, err = tx.QueryContext(ctx, `SELECT id, name, phone, note FROM counterparties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: counterparties: %w", op, err)
	}
	if snap.Counterparties, err = collectRows(rows, func(row rowScanner) (storage.Counterparty, error) {
		var c storage.Counterparty
		err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Note)
		return c, err
	}); err != nil {
		return nil, fmt.Errorf("%s: counterparties: %w", op, err)
	}

	rows, err = tx.QueryContext(ctx, `SELECT id, name, kind FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: categories: %w", op, err)
	}
	if snap.Categories, err = collectRows(rows, func(row rowScanner) (storage.Category, error) {
		var c storage.Category
		err := row.Scan(&c.ID, &c.Name, &c.Kind)
		return c, err
	}); err != nil {
		return nil, fmt.Errorf("%s: categories: %w", op, err)
	}

	var start sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT card_commission_percent, enabled, start_date FROM cash_register_settings WHERE id = 1`).
		Scan(&snap.Settings.CardCommissionPercent, &snap.Settings.CashRegisterEnabled, &start)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("%s: settings: %w", op, err)
	}
	snap.Settings.CashRegisterStartDate = timePtr(start)

	return snap, nil
}

// RestoreSnapshot replaces every business table with the snapshot content.
// Ids are kept so repair/part/ledger links survive.
func (s *Storage) RestoreSnapshot(ctx context.Context, snap *storage.Snapshot) error {
	const op = "storage.mysql.RestoreSnapshot"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "parts", "repairs", "executors", "counterparties", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("%s: очистка %s: %w", op, table, err)
		}
	}

	for _, r := range snap.Repairs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO repairs (`+repairColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.ReceiptID, r.DeviceName, r.FaultDesc, r.WorkDone, r.CostLabor, r.TotalCost, r.IsPaid, r.Status,
			r.ClientName, r.ClientPhone, r.Profit, r.DateStart, nullTime(r.DateEnd), r.Note, r.ShouldCall,
			r.Executor, r.PaymentType)
		if err != nil {
			return fmt.Errorf("%s: ремонт id=%d: %w", op, r.ID, err)
		}
	}

	for _, p := range snap.Parts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO parts (`+partColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Supplier, p.Name, p.PriceUah, p.CostUah, p.Profit, p.InStock, nullInt(p.RepairID),
			nullInt(p.ReceiptID), p.Barcode, p.ProductCode, p.IsPaid, p.DateArrival, nullTime(p.DateSold))
		if err != nil {
			return fmt.Errorf("%s: запчасть id=%d: %w", op, p.ID, err)
		}
	}

	for _, t := range snap.Transactions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Category, t.Description, t.Amount, t.Cash, t.Card, t.PaymentType, t.DateExecuted,
			t.ExecutorName, nullInt(t.RepairID))
		if err != nil {
			return fmt.Errorf("%s: операция id=%d: %w", op, t.ID, err)
		}
	}

	for _, e := range snap.Executors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO executors (id, name, salary_percent, products_percent, icon, color) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.SalaryPercent, e.ProductsPercent, e.Icon, e.Color)
		if err != nil {
			return fmt.Errorf("%s: исполнитель id=%d: %w", op, e.ID, err)
		}
	}

	for _, c := range snap.Counterparties {
		_, err := tx.ExecContext(ctx, `INSERT INTO counterparties (id, name, phone, note) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Phone, c.Note)
		if err != nil {
			return fmt.Errorf("%s: поставщик id=%d: %w", op, c.ID, err)
		}
	}

	for _, c := range snap.Categories {
		_, err := tx.ExecContext(ctx, `INSERT INTO categories (id, name, kind) VALUES (?, ?, ?)`, c.ID, c.Name, c.Kind)
		if err != nil {
			return fmt.Errorf("%s: категория id=%d: %w", op, c.ID, err)
		}
	}

	st := snap.Settings
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cash_register_settings (id, card_commission_percent, enabled, start_date)
		VALUES (1, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			card_commission_percent = VALUES(card_commission_percent),
			enabled = VALUES(enabled),
			start_date = VALUES(start_date)`,
		st.CardCommissionPercent, st.CashRegisterEnabled, nullTime(st.CashRegisterStartDate))
	if err != nil {
		return fmt.Errorf("%s: настройки кассы: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
