package generate_excel

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/executor"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type GenerateExcelStorage interface {
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]storage.Transaction, error)
	GetBalances(ctx context.Context) (storage.Balances, error)
	ListRepairs(ctx context.Context, f storage.RepairFilter) ([]storage.Repair, error)
	ListExecutors(ctx context.Context) ([]storage.Executor, error)
	ListIssuedRepairs(ctx context.Context, executor string, from, to time.Time) ([]storage.IssuedRepair, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

const dateLayout = "02.01.2006 15:04"

// TransactionsReport builds the ledger workbook for [from, to] with the
// current balances under the table.
func (g *GenerateExcelService) TransactionsReport(ctx context.Context, from, to time.Time) ([]byte, error) {
	var (
		transactions []storage.Transaction
		balances     storage.Balances
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		transactions, err = g.storage.ListTransactions(egCtx, storage.TransactionFilter{From: &from, To: &to})
		if err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		balances, err = g.storage.GetBalances(egCtx)
		if err != nil {
			return fmt.Errorf("balances: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Каса"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, err
	}

	headers := []string{"Дата", "Категорія", "Опис", "Сума", "Готівка", "Картка", "Оплата", "Виконавець"}
	writeHeader(f, sheet, headers, headerStyle)

	// Данные
	for i, t := range transactions {
		row := i + 2
		f.SetCellValue(sheet, cellName(1, row), t.DateExecuted.Format(dateLayout))
		f.SetCellValue(sheet, cellName(2, row), t.Category)
		f.SetCellValue(sheet, cellName(3, row), t.Description)
		f.SetCellValue(sheet, cellName(4, row), t.Amount)
		f.SetCellValue(sheet, cellName(5, row), t.Cash)
		f.SetCellValue(sheet, cellName(6, row), t.Card)
		f.SetCellValue(sheet, cellName(7, row), paymentLabel(t.PaymentType))
		f.SetCellValue(sheet, cellName(8, row), t.ExecutorName)
	}

	// Итоги
	footer := len(transactions) + 3
	f.SetCellValue(sheet, cellName(3, footer), "Залишок")
	f.SetCellValue(sheet, cellName(4, footer), balances.Total)
	f.SetCellValue(sheet, cellName(5, footer), balances.Cash)
	f.SetCellValue(sheet, cellName(6, footer), balances.Card)
	f.SetCellStyle(sheet, cellName(3, footer), cellName(6, footer), headerStyle)

	freezeHeader(f, sheet)
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "B", 16)
	f.SetColWidth(sheet, "C", "C", 40)
	f.SetColWidth(sheet, "D", "H", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// RepairsReport builds the repairs workbook for repairs accepted in
// [from, to] plus an executor earnings sheet for the same period.
func (g *GenerateExcelService) RepairsReport(ctx context.Context, from, to time.Time) ([]byte, error) {
	var (
		repairs   []storage.Repair
		executors []storage.Executor
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		repairs, err = g.storage.ListRepairs(egCtx, storage.RepairFilter{From: &from, To: &to})
		if err != nil {
			return fmt.Errorf("repairs: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		executors, err = g.storage.ListExecutors(egCtx)
		if err != nil {
			return fmt.Errorf("executors: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}

	earnings := make([]executor.Earnings, len(executors))
	eg, egCtx = errgroup.WithContext(ctx)
	for i, e := range executors {
		eg.Go(func() error {
			issued, err := g.storage.ListIssuedRepairs(egCtx, e.Name, from, to)
			if err != nil {
				return fmt.Errorf("earnings %s: %w", e.Name, err)
			}
			earnings[i] = executor.ComputeEarnings(e, issued)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Ремонти"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, err
	}

	headers := []string{"Квитанція", "Прийнято", "Видано", "Клієнт", "Телефон", "Техніка", "Несправність",
		"Виконано", "Статус", "Робота", "Всього", "Прибуток", "Оплачено", "Оплата", "Виконавець"}
	writeHeader(f, sheet, headers, headerStyle)

	for i, r := range repairs {
		row := i + 2
		f.SetCellValue(sheet, cellName(1, row), r.ReceiptID)
		f.SetCellValue(sheet, cellName(2, row), r.DateStart.Format(dateLayout))
		if r.DateEnd != nil {
			f.SetCellValue(sheet, cellName(3, row), r.DateEnd.Format(dateLayout))
		}
		f.SetCellValue(sheet, cellName(4, row), r.ClientName)
		f.SetCellValue(sheet, cellName(5, row), r.ClientPhone)
		f.SetCellValue(sheet, cellName(6, row), r.DeviceName)
		f.SetCellValue(sheet, cellName(7, row), r.FaultDesc)
		f.SetCellValue(sheet, cellName(8, row), r.WorkDone)
		f.SetCellValue(sheet, cellName(9, row), statusLabel(r.Status))
		f.SetCellValue(sheet, cellName(10, row), r.CostLabor)
		f.SetCellValue(sheet, cellName(11, row), r.TotalCost)
		f.SetCellValue(sheet, cellName(12, row), r.Profit)
		f.SetCellValue(sheet, cellName(13, row), yesNo(r.IsPaid))
		f.SetCellValue(sheet, cellName(14, row), paymentLabel(r.PaymentType))
		f.SetCellValue(sheet, cellName(15, row), r.Executor)
	}

	freezeHeader(f, sheet)
	f.SetColWidth(sheet, "A", "C", 16)
	f.SetColWidth(sheet, "D", "H", 24)

	// Лист зарплат
	earnSheet := "Виконавці"
	if _, err := f.NewSheet(earnSheet); err != nil {
		return nil, err
	}
	writeHeader(f, earnSheet, []string{"Виконавець", "Ремонтів", "Робота", "Прибуток з запчастин", "ЗП з роботи",
		"ЗП з запчастин", "Разом"}, headerStyle)
	for i, e := range earnings {
		row := i + 2
		f.SetCellValue(earnSheet, cellName(1, row), e.Name)
		f.SetCellValue(earnSheet, cellName(2, row), e.Repairs)
		f.SetCellValue(earnSheet, cellName(3, row), e.Labor)
		f.SetCellValue(earnSheet, cellName(4, row), e.Profit)
		f.SetCellValue(earnSheet, cellName(5, row), e.Salary)
		f.SetCellValue(earnSheet, cellName(6, row), e.Products)
		f.SetCellValue(earnSheet, cellName(7, row), e.Total)
	}
	f.SetColWidth(earnSheet, "A", "G", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), style)
}

func freezeHeader(f *excelize.File, sheet string) {
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func paymentLabel(p string) string {
	switch p {
	case constants.PaymentCash:
		return "готівка"
	case constants.PaymentCard:
		return "картка"
	default:
		return ""
	}
}

func statusLabel(s string) string {
	switch s {
	case constants.StatusQueue:
		return "У черзі"
	case constants.StatusInProgress:
		return "У роботі"
	case constants.StatusWaiting:
		return "Очікування"
	case constants.StatusReady:
		return "Готовий"
	case constants.StatusNoAnswer:
		return "Не відповідає"
	case constants.StatusOdessa:
		return "Одеса"
	case constants.StatusIssued:
		return "Видано"
	default:
		return s
	}
}

func yesNo(b bool) string {
	if b {
		return "так"
	}
	return "ні"
}
