package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (s *Storage) ListExecutors(ctx context.Context) ([]storage.Executor, error) {
	const op = "storage.mysql.ListExecutors"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, salary_percent, products_percent, icon, color FROM executors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения всех исполнителей: %w", op, err)
	}
	defer rows.Close()

	executors := make([]storage.Executor, 0)
	for rows.Next() {
		var e storage.Executor
		if err := rows.Scan(&e.ID, &e.Name, &e.SalaryPercent, &e.ProductsPercent, &e.Icon, &e.Color); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строк исполнителей: %w", op, err)
		}
		executors = append(executors, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return executors, nil
}

func (s *Storage) GetExecutor(ctx context.Context, id int64) (*storage.Executor, error) {
	const op = "storage.mysql.GetExecutor"

	var e storage.Executor
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, salary_percent, products_percent, icon, color FROM executors WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.SalaryPercent, &e.ProductsPercent, &e.Icon, &e.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: исполнитель id=%d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

func (s *Storage) CreateExecutor(ctx context.Context, e storage.Executor) (int64, error) {
	const op = "storage.mysql.CreateExecutor"

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO executors (name, salary_percent, products_percent, icon, color) VALUES (?, ?, ?, ?, ?)`,
		e.Name, e.SalaryPercent, e.ProductsPercent, e.Icon, e.Color)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: исполнитель %q уже существует: %w", op, e.Name, storage.ErrConflict)
		}
		return 0, fmt.Errorf("%s: ошибка сохранения исполнителя: %w", op, err)
	}

	return res.LastInsertId()
}

func (s *Storage) UpdateExecutor(ctx context.Context, e storage.Executor) error {
	const op = "storage.mysql.UpdateExecutor"

	res, err := s.db.ExecContext(ctx, `
		UPDATE executors SET name = ?, salary_percent = ?, products_percent = ?, icon = ?, color = ? WHERE id = ?`,
		e.Name, e.SalaryPercent, e.ProductsPercent, e.Icon, e.Color, e.ID)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: исполнитель %q уже существует: %w", op, e.Name, storage.ErrConflict)
		}
		return fmt.Errorf("%s: ошибка обновления исполнителя id=%d: %w", op, e.ID, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetExecutor(ctx, e.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (s *Storage) DeleteExecutor(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteExecutor"

	res, err := s.db.ExecContext(ctx, `DELETE FROM executors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: исполнитель id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) ListCounterparties(ctx context.Context) ([]storage.Counterparty, error) {
	const op = "storage.mysql.ListCounterparties"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, phone, note FROM counterparties ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]storage.Counterparty, 0)
	for rows.Next() {
		var c storage.Counterparty
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Note); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Storage) CreateCounterparty(ctx context.Context, c storage.Counterparty) (int64, error) {
	const op = "storage.mysql.CreateCounterparty"

	res, err := s.db.ExecContext(ctx, `INSERT INTO counterparties (name, phone, note) VALUES (?, ?, ?)`,
		c.Name, c.Phone, c.Note)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: поставщик %q уже существует: %w", op, c.Name, storage.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.LastInsertId()
}

func (s *Storage) UpdateCounterparty(ctx context.Context, c storage.Counterparty) error {
	const op = "storage.mysql.UpdateCounterparty"

	res, err := s.db.ExecContext(ctx, `UPDATE counterparties SET name = ?, phone = ?, note = ? WHERE id = ?`,
		c.Name, c.Phone, c.Note, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: поставщик %q уже существует: %w", op, c.Name, storage.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM counterparties WHERE id = ?`, c.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: поставщик id=%d: %w", op, c.ID, storage.ErrNotFound)
		}
	}

	return nil
}

func (s *Storage) DeleteCounterparty(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteCounterparty"

	res, err := s.db.ExecContext(ctx, `DELETE FROM counterparties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: поставщик id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]storage.Category, error) {
	const op = "storage.mysql.ListCategories"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, kind FROM categories ORDER BY kind, name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]storage.Category, 0)
	for rows.Next() {
		var c storage.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Storage) GetCategoryByName(ctx context.Context, name string) (*storage.Category, error) {
	const op = "storage.mysql.GetCategoryByName"

	var c storage.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name, kind FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: категория %q: %w", op, name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

func (s *Storage) CreateCategory(ctx context.Context, c storage.Category) (int64, error) {
	const op = "storage.mysql.CreateCategory"

	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (name, kind) VALUES (?, ?)`, c.Name, c.Kind)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: категория %q уже существует: %w", op, c.Name, storage.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.LastInsertId()
}

func (s *Storage) DeleteCategory(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteCategory"

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: категория id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}
