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

const repairColumns = `id, receipt_id, device_name, fault_desc, work_done, cost_labor, total_cost, is_paid, status,
	client_name, client_phone, profit, date_start, date_end, note, should_call, executor, payment_type`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepair(row rowScanner) (*storage.Repair, error) {
	var (
		r       storage.Repair
		dateEnd sql.NullTime
	)

	err := row.Scan(&r.ID, &r.ReceiptID, &r.DeviceName, &r.FaultDesc, &r.WorkDone, &r.CostLabor, &r.TotalCost,
		&r.IsPaid, &r.Status, &r.ClientName, &r.ClientPhone, &r.Profit, &r.DateStart, &dateEnd, &r.Note,
		&r.ShouldCall, &r.Executor, &r.PaymentType)
	if err != nil {
		return nil, err
	}

	r.DateEnd = timePtr(dateEnd)

	return &r, nil
}

func (s *Storage) GetRepair(ctx context.Context, id int64) (*storage.Repair, error) {
	const op = "storage.mysql.GetRepair"

	row := s.db.QueryRowContext(ctx, `SELECT `+repairColumns+` FROM repairs WHERE id = ?`, id)

	r, err := scanRepair(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: ремонт id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения ремонта id=%d: %w", op, id, err)
	}

	return r, nil
}

// ListRepairs returns repairs newest first. Search matches the client, phone,
// device, receipt and note columns.
func (s *Storage) ListRepairs(ctx context.Context, f storage.RepairFilter) ([]storage.Repair, error) {
	const op = "storage.mysql.ListRepairs"

	var (
		where []string
		args  []any
	)

	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + q + "%"
		where = append(where, `(client_name LIKE ? OR client_phone LIKE ? OR device_name LIKE ?
			OR CAST(receipt_id AS CHAR) LIKE ? OR note LIKE ?)`)
		args = append(args, like, like, like, like, like)
	}

	if len(f.Statuses) > 0 {
		where = append(where, `status IN (`+placeholders(len(f.Statuses))+`)`)
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	}

	if f.Executor != "" {
		where = append(where, `executor = ?`)
		args = append(args, f.Executor)
	}

	if f.From != nil {
		where = append(where, `date_start >= ?`)
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, `date_start <= ?`)
		args = append(args, *f.To)
	}

	query := `SELECT ` + repairColumns + ` FROM repairs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY receipt_id DESC`

	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения ремонтов: %w", op, err)
	}
	defer rows.Close()

	repairs := make([]storage.Repair, 0)
	for rows.Next() {
		r, err := scanRepair(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования ремонта: %w", op, err)
		}
		repairs = append(repairs, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return repairs, nil
}

func (s *Storage) NextReceiptID(ctx context.Context) (int64, error) {
	const op = "storage.mysql.NextReceiptID"

	var maxID sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(receipt_id) FROM repairs`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return maxID.Int64 + 1, nil
}

func (s *Storage) CreateRepair(ctx context.Context, r storage.Repair) (int64, error) {
	const op = "storage.mysql.CreateRepair"

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO repairs (receipt_id, device_name, fault_desc, work_done, cost_labor, total_cost, is_paid, status,
			client_name, client_phone, profit, date_start, date_end, note, should_call, executor, payment_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ReceiptID, r.DeviceName, r.FaultDesc, r.WorkDone, r.CostLabor, r.TotalCost, r.IsPaid, r.Status,
		r.ClientName, r.ClientPhone, r.Profit, r.DateStart, nullTime(r.DateEnd), r.Note, r.ShouldCall, r.Executor,
		r.PaymentType,
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: квитанция %d уже существует: %w", op, r.ReceiptID, storage.ErrConflict)
		}
		return 0, fmt.Errorf("%s: ошибка сохранения ремонта: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// SaveRepair writes the repair, the paid flag of its parts and the ledger
// entries in one transaction.
func (s *Storage) SaveRepair(ctx context.Context, upd storage.RepairUpdate) error {
	const op = "storage.mysql.SaveRepair"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	r := upd.Repair
	res, err := tx.ExecContext(ctx, `
		UPDATE repairs SET receipt_id = ?, device_name = ?, fault_desc = ?, work_done = ?, cost_labor = ?,
			total_cost = ?, is_paid = ?, status = ?, client_name = ?, client_phone = ?, profit = ?, date_start = ?,
			date_end = ?, note = ?, should_call = ?, executor = ?, payment_type = ?
		WHERE id = ?`,
		r.ReceiptID, r.DeviceName, r.FaultDesc, r.WorkDone, r.CostLabor, r.TotalCost, r.IsPaid, r.Status,
		r.ClientName, r.ClientPhone, r.Profit, r.DateStart, nullTime(r.DateEnd), r.Note, r.ShouldCall, r.Executor,
		r.PaymentType, r.ID,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: квитанция %d уже существует: %w", op, r.ReceiptID, storage.ErrConflict)
		}
		return fmt.Errorf("%s: ошибка обновления ремонта id=%d: %w", op, r.ID, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if err := s.repairExistsTx(ctx, tx, r.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	// квитанция могла измениться
	_, err = tx.ExecContext(ctx, `UPDATE parts SET receipt_id = ? WHERE repair_id = ?`, r.ReceiptID, r.ID)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления квитанции запчастей: %w", op, err)
	}

	if upd.PartsPaid != nil {
		_, err = tx.ExecContext(ctx, `UPDATE parts SET is_paid = ?, date_sold = ? WHERE repair_id = ?`,
			*upd.PartsPaid, nullTime(upd.SoldAt), r.ID)
		if err != nil {
			return fmt.Errorf("%s: ошибка обновления оплаты запчастей ремонта id=%d: %w", op, r.ID, err)
		}
	}

	if err := insertTransactionsTx(ctx, tx, upd.Ledger); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func (s *Storage) repairExistsTx(ctx context.Context, tx *sql.Tx, id int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM repairs WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ремонт id=%d: %w", id, storage.ErrNotFound)
	}
	return err
}

// UpdateRepairTotals stores recomputed totals without touching other fields.
func (s *Storage) UpdateRepairTotals(ctx context.Context, id int64, totalCost, profit float64) error {
	const op = "storage.mysql.UpdateRepairTotals"

	_, err := s.db.ExecContext(ctx, `UPDATE repairs SET total_cost = ?, profit = ? WHERE id = ?`, totalCost, profit, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления сумм ремонта id=%d: %w", op, id, err)
	}

	return nil
}

// DeleteRepair removes the repair. Unpaid parts go back to stock, paid ones
// keep their receipt for history.
func (s *Storage) DeleteRepair(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteRepair"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE parts SET in_stock = TRUE, repair_id = NULL, receipt_id = NULL
		WHERE repair_id = ? AND is_paid = FALSE`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка возврата запчастей на склад: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE parts SET repair_id = NULL WHERE repair_id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка отвязки запчастей: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM repairs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления ремонта id=%d: %w", op, id, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: ремонт id=%d: %w", op, id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// ListIssuedRepairs returns paid repairs of an executor finished within [from, to].
func (s *Storage) ListIssuedRepairs(ctx context.Context, executor string, from, to time.Time) ([]storage.IssuedRepair, error) {
	const op = "storage.mysql.ListIssuedRepairs"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, receipt_id, cost_labor, profit, date_end
		FROM repairs
		WHERE executor = ? AND is_paid = TRUE AND date_end BETWEEN ? AND ?
		ORDER BY date_end`, executor, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []storage.IssuedRepair
	for rows.Next() {
		var r storage.IssuedRepair
		if err := rows.Scan(&r.ID, &r.ReceiptID, &r.CostLabor, &r.Profit, &r.DateEnd); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}
