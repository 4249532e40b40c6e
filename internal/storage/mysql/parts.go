package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

const partColumns = `id, supplier, name, price_uah, cost_uah, profit, in_stock, repair_id, receipt_id, barcode,
	product_code, is_paid, date_arrival, date_sold`

func scanPart(row rowScanner) (*storage.Part, error) {
	var (
		p         storage.Part
		repairID  sql.NullInt64
		receiptID sql.NullInt64
		dateSold  sql.NullTime
	)

	err := row.Scan(&p.ID, &p.Supplier, &p.Name, &p.PriceUah, &p.CostUah, &p.Profit, &p.InStock, &repairID,
		&receiptID, &p.Barcode, &p.ProductCode, &p.IsPaid, &p.DateArrival, &dateSold)
	if err != nil {
		return nil, err
	}

	p.RepairID = intPtr(repairID)
	p.ReceiptID = intPtr(receiptID)
	p.DateSold = timePtr(dateSold)

	return &p, nil
}

func collectParts(rows *sql.Rows) ([]storage.Part, error) {
	defer rows.Close()

	parts := make([]storage.Part, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}

	return parts, rows.Err()
}

func (s *Storage) GetPart(ctx context.Context, id int64) (*storage.Part, error) {
	const op = "storage.mysql.GetPart"

	p, err := scanPart(s.db.QueryRowContext(ctx, `SELECT `+partColumns+` FROM parts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: запчасть id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Storage) ListParts(ctx context.Context, f storage.PartFilter) ([]storage.Part, error) {
	const op = "storage.mysql.ListParts"

	var (
		where []string
		args  []any
	)

	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + q + "%"
		where = append(where, `(name LIKE ? OR barcode LIKE ? OR product_code LIKE ?)`)
		args = append(args, like, like, like)
	}
	if f.Supplier != "" {
		where = append(where, `supplier = ?`)
		args = append(args, f.Supplier)
	}
	if f.InStock != nil {
		where = append(where, `in_stock = ?`)
		args = append(args, *f.InStock)
	}

	query := `SELECT ` + partColumns + ` FROM parts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date_arrival DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения запчастей: %w", op, err)
	}

	parts, err := collectParts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return parts, nil
}

func (s *Storage) GetRepairParts(ctx context.Context, repairID int64) ([]storage.Part, error) {
	const op = "storage.mysql.GetRepairParts"

	rows, err := s.db.QueryContext(ctx, `SELECT `+partColumns+` FROM parts WHERE repair_id = ? ORDER BY id`, repairID)
	if err != nil {
		return nil, fmt.Errorf("%s: ремонт id=%d: %w", op, repairID, err)
	}

	parts, err := collectParts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return parts, nil
}

// CreateParts inserts the parts and the optional purchase entry in one transaction.
func (s *Storage) CreateParts(ctx context.Context, parts []storage.Part, ledger []storage.Transaction) ([]int64, error) {
	const op = "storage.mysql.CreateParts"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	ids, err := insertPartsTx(ctx, tx, parts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := insertTransactionsTx(ctx, tx, ledger); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return ids, nil
}

func insertPartsTx(ctx context.Context, tx *sql.Tx, parts []storage.Part) ([]int64, error) {
	if len(parts) == 0 {
		return nil, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parts (supplier, name, price_uah, cost_uah, profit, in_stock, repair_id, receipt_id, barcode,
			product_code, is_paid, date_arrival, date_sold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		res, err := stmt.ExecContext(ctx, p.Supplier, p.Name, p.PriceUah, p.CostUah, p.Profit, p.InStock,
			nullInt(p.RepairID), nullInt(p.ReceiptID), p.Barcode, p.ProductCode, p.IsPaid, p.DateArrival,
			nullTime(p.DateSold))
		if err != nil {
			return nil, fmt.Errorf("ошибка вставки запчасти %q: %w", p.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *Storage) UpdatePart(ctx context.Context, p storage.Part) error {
	const op = "storage.mysql.UpdatePart"

	res, err := s.db.ExecContext(ctx, `
		UPDATE parts SET supplier = ?, name = ?, price_uah = ?, cost_uah = ?, profit = ?, barcode = ?, product_code = ?
		WHERE id = ?`,
		p.Supplier, p.Name, p.PriceUah, p.CostUah, p.Profit, p.Barcode, p.ProductCode, p.ID)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления запчасти id=%d: %w", op, p.ID, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetPart(ctx, p.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// DeletePart removes an in-stock part and posts the optional write-off entry.
func (s *Storage) DeletePart(ctx context.Context, id int64, ledger []storage.Transaction) error {
	const op = "storage.mysql.DeletePart"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var inStock bool
	err = tx.QueryRowContext(ctx, `SELECT in_stock FROM parts WHERE id = ? FOR UPDATE`, id).Scan(&inStock)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: запчасть id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !inStock {
		return fmt.Errorf("%s: запчасть id=%d: %w", op, id, storage.ErrPartNotInStock)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM parts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: ошибка удаления запчасти id=%d: %w", op, id, err)
	}

	if err := insertTransactionsTx(ctx, tx, ledger); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// AttachPart moves an in-stock part onto a repair.
func (s *Storage) AttachPart(ctx context.Context, partID, repairID, receiptID int64, paid bool, soldAt *time.Time) error {
	const op = "storage.mysql.AttachPart"

	res, err := s.db.ExecContext(ctx, `
		UPDATE parts SET in_stock = FALSE, repair_id = ?, receipt_id = ?, is_paid = ?, date_sold = ?
		WHERE id = ? AND in_stock = TRUE`,
		repairID, receiptID, paid, nullTime(soldAt), partID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetPart(ctx, partID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: запчасть id=%d: %w", op, partID, storage.ErrPartNotInStock)
	}

	return nil
}

// DetachPart returns a part from a repair to stock.
func (s *Storage) DetachPart(ctx context.Context, partID, repairID int64) error {
	const op = "storage.mysql.DetachPart"

	res, err := s.db.ExecContext(ctx, `
		UPDATE parts SET in_stock = TRUE, repair_id = NULL, receipt_id = NULL, is_paid = FALSE, date_sold = NULL
		WHERE id = ? AND repair_id = ?`, partID, repairID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: запчасть id=%d ремонт id=%d: %w", op, partID, repairID, storage.ErrPartNotInRepair)
	}

	return nil
}
