package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

var ErrInvalidExecutor = errors.New("invalid executor")

type Storage interface {
	ListExecutors(ctx context.Context) ([]storage.Executor, error)
	GetExecutor(ctx context.Context, id int64) (*storage.Executor, error)
	CreateExecutor(ctx context.Context, e storage.Executor) (int64, error)
	UpdateExecutor(ctx context.Context, e storage.Executor) error
	DeleteExecutor(ctx context.Context, id int64) error
	ListIssuedRepairs(ctx context.Context, executor string, from, to time.Time) ([]storage.IssuedRepair, error)
}

type ExecutorService struct {
	storage Storage
}

func NewExecutorService(storage Storage) *ExecutorService {
	return &ExecutorService{storage: storage}
}

func validate(e *storage.Executor) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExecutor)
	}
	for _, pct := range []float64{e.SalaryPercent, e.ProductsPercent} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: percent must be between 0 and 100", ErrInvalidExecutor)
		}
	}
	return nil
}

func (s *ExecutorService) List(ctx context.Context) ([]storage.Executor, error) {
	return s.storage.ListExecutors(ctx)
}

func (s *ExecutorService) Create(ctx context.Context, e storage.Executor) (*storage.Executor, error) {
	if err := validate(&e); err != nil {
		return nil, err
	}

	id, err := s.storage.CreateExecutor(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("service.executor.Create: %w", err)
	}
	e.ID = id

	return &e, nil
}

func (s *ExecutorService) Update(ctx context.Context, e storage.Executor) (*storage.Executor, error) {
	if err := validate(&e); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateExecutor(ctx, e); err != nil {
		return nil, fmt.Errorf("service.executor.Update: %w", err)
	}

	return &e, nil
}

func (s *ExecutorService) Delete(ctx context.Context, id int64) error {
	return s.storage.DeleteExecutor(ctx, id)
}

type Earnings struct {
	ExecutorID int64     `json:"executorId"`
	Name       string    `json:"name"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Repairs    int       `json:"repairs"`
	Labor      float64   `json:"labor"`
	Profit     float64   `json:"profit"`
	Salary     float64   `json:"salary"`
	Products   float64   `json:"products"`
	Total      float64   `json:"total"`
}

// ComputeEarnings pays salaryPercent of labor and productsPercent of parts
// profit for every issued repair.
func ComputeEarnings(e storage.Executor, repairs []storage.IssuedRepair) Earnings {
	labor := make([]float64, 0, len(repairs))
	profit := make([]float64, 0, len(repairs))
	for _, r := range repairs {
		labor = append(labor, r.CostLabor)
		profit = append(profit, r.Profit)
	}

	out := Earnings{
		ExecutorID: e.ID,
		Name:       e.Name,
		Repairs:    len(repairs),
		Labor:      money.Sum(labor...),
		Profit:     money.Sum(profit...),
	}
	out.Salary = money.Percent(out.Labor, e.SalaryPercent)
	out.Products = money.Percent(out.Profit, e.ProductsPercent)
	out.Total = money.Sum(out.Salary, out.Products)

	return out
}

func (s *ExecutorService) Earnings(ctx context.Context, id int64, from, to time.Time) (*Earnings, error) {
	const op = "service.executor.Earnings"

	e, err := s.storage.GetExecutor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repairs, err := s.storage.ListIssuedRepairs(ctx, e.Name, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := ComputeEarnings(*e, repairs)
	out.From, out.To = from, to

	return &out, nil
}
