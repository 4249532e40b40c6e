package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

var (
	ErrInvalidPart        = errors.New("invalid part")
	ErrInvalidPaymentType = errors.New("payment type must be cash or card")
)

const maxReceiveQuantity = 500

type Storage interface {
	GetPart(ctx context.Context, id int64) (*storage.Part, error)
	ListParts(ctx context.Context, f storage.PartFilter) ([]storage.Part, error)
	GetRepairParts(ctx context.Context, repairID int64) ([]storage.Part, error)
	CreateParts(ctx context.Context, parts []storage.Part, ledger []storage.Transaction) ([]int64, error)
	UpdatePart(ctx context.Context, p storage.Part) error
	DeletePart(ctx context.Context, id int64, ledger []storage.Transaction) error
	AttachPart(ctx context.Context, partID, repairID, receiptID int64, paid bool, soldAt *time.Time) error
	DetachPart(ctx context.Context, partID, repairID int64) error
	GetRepair(ctx context.Context, id int64) (*storage.Repair, error)
	GetCashRegisterSettings(ctx context.Context) (*storage.CashRegisterSettings, error)
}

// TotalsRecalculator refreshes repair totals after its parts changed.
type TotalsRecalculator interface {
	Recalculate(ctx context.Context, id int64) (*storage.Repair, error)
}

type WarehouseService struct {
	log     *slog.Logger
	storage Storage
	totals  TotalsRecalculator
	now     func() time.Time
}

func NewWarehouseService(log *slog.Logger, storage Storage, totals TotalsRecalculator) *WarehouseService {
	return &WarehouseService{log: log, storage: storage, totals: totals, now: time.Now}
}

type PartInput struct {
	Supplier    string  `json:"supplier"`
	Name        string  `json:"name"`
	PriceUah    float64 `json:"priceUah"`
	CostUah     float64 `json:"costUah"`
	Barcode     string  `json:"barcode"`
	ProductCode string  `json:"productCode"`
}

type ReceiveInput struct {
	PartInput
	Quantity        int    `json:"quantity"`
	PayFromRegister bool   `json:"payFromRegister"`
	PaymentType     string `json:"paymentType"`
}

func (in PartInput) build(now time.Time) (storage.Part, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return storage.Part{}, fmt.Errorf("%w: name is required", ErrInvalidPart)
	}
	if in.PriceUah < 0 || in.CostUah < 0 {
		return storage.Part{}, fmt.Errorf("%w: prices must not be negative", ErrInvalidPart)
	}

	p := storage.Part{
		Supplier:    strings.TrimSpace(in.Supplier),
		Name:        name,
		PriceUah:    money.Round2(in.PriceUah),
		CostUah:     money.Round2(in.CostUah),
		Barcode:     strings.TrimSpace(in.Barcode),
		ProductCode: strings.TrimSpace(in.ProductCode),
		DateArrival: now,
	}
	p.Profit = money.Sub(p.PriceUah, p.CostUah)

	return p, nil
}

// Receive puts quantity identical parts in stock. With payFromRegister the
// purchase is paid from the register as a Покупка entry.
func (s *WarehouseService) Receive(ctx context.Context, in ReceiveInput) ([]int64, error) {
	const op = "service.warehouse.Receive"

	now := s.now()
	parts, err := in.stock(now)
	if err != nil {
		return nil, err
	}
	p := parts[0]

	var ledger []storage.Transaction
	if in.PayFromRegister {
		entry, err := s.purchaseEntry(ctx, p, in.Quantity, in.PaymentType, now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ledger = append(ledger, entry)
	}

	ids, err := s.storage.CreateParts(ctx, parts, ledger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("parts received",
		slog.String("op", op),
		slog.String("name", p.Name),
		slog.Int("quantity", len(parts)),
		slog.Bool("paid_from_register", in.PayFromRegister),
	)

	return ids, nil
}

// stock validates the input and returns its quantity of identical in-stock parts.
func (in ReceiveInput) stock(now time.Time) ([]storage.Part, error) {
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 || qty > maxReceiveQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidPart, maxReceiveQuantity)
	}

	p, err := in.build(now)
	if err != nil {
		return nil, err
	}
	p.InStock = true

	parts := make([]storage.Part, qty)
	for i := range parts {
		parts[i] = p
	}
	return parts, nil
}

func (s *WarehouseService) purchaseEntry(ctx context.Context, p storage.Part, qty int, paymentType string, now time.Time) (storage.Transaction, error) {
	if !constants.IsPaymentType(paymentType) {
		return storage.Transaction{}, ErrInvalidPaymentType
	}

	st, err := s.storage.GetCashRegisterSettings(ctx)
	if err != nil {
		return storage.Transaction{}, err
	}
	if !st.CashRegisterEnabled {
		return storage.Transaction{}, storage.ErrRegisterDisabled
	}

	desc := fmt.Sprintf("%s x%d", p.Name, qty)
	if p.Supplier != "" {
		desc += " (" + p.Supplier + ")"
	}

	return cashregister.ColumnEntry(constants.CategoryPurchase, desc, -money.Mul(p.CostUah, qty), paymentType, now), nil
}

func (s *WarehouseService) List(ctx context.Context, f storage.PartFilter) ([]storage.Part, error) {
	return s.storage.ListParts(ctx, f)
}

func (s *WarehouseService) Grouped(ctx context.Context, f storage.PartFilter) ([]storage.PartGroup, error) {
	parts, err := s.storage.ListParts(ctx, f)
	if err != nil {
		return nil, err
	}
	return Group(parts), nil
}

// Group collapses parts with the same name and supplier. The first part
// seen (newest, given the storage order) sets the group prices.
func Group(parts []storage.Part) []storage.PartGroup {
	type key struct{ name, supplier string }

	index := make(map[key]int)
	groups := make([]storage.PartGroup, 0)

	for _, p := range parts {
		k := key{strings.ToLower(strings.TrimSpace(p.Name)), strings.ToLower(strings.TrimSpace(p.Supplier))}
		i, ok := index[k]
		if !ok {
			index[k] = len(groups)
			groups = append(groups, storage.PartGroup{
				Name:     p.Name,
				Supplier: p.Supplier,
				PriceUah: p.PriceUah,
				CostUah:  p.CostUah,
			})
			i = len(groups) - 1
		}
		groups[i].Quantity++
		groups[i].IDs = append(groups[i].IDs, p.ID)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return strings.ToLower(groups[a].Name) < strings.ToLower(groups[b].Name)
	})

	return groups
}

// Update edits a part. Totals of the repair it belongs to follow.
func (s *WarehouseService) Update(ctx context.Context, id int64, in PartInput) (*storage.Part, error) {
	const op = "service.warehouse.Update"

	current, err := s.storage.GetPart(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := in.build(current.DateArrival)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.InStock = current.InStock
	p.RepairID = current.RepairID
	p.ReceiptID = current.ReceiptID
	p.IsPaid = current.IsPaid
	p.DateSold = current.DateSold

	if err := s.storage.UpdatePart(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if p.RepairID != nil {
		if _, err := s.totals.Recalculate(ctx, *p.RepairID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &p, nil
}

// Delete removes an in-stock part without touching the ledger.
func (s *WarehouseService) Delete(ctx context.Context, id int64) error {
	const op = "service.warehouse.Delete"

	if err := s.storage.DeletePart(ctx, id, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// WriteOff removes a damaged or lost part. When the register is on its cost
// is booked as Списання.
func (s *WarehouseService) WriteOff(ctx context.Context, id int64, reason string) error {
	const op = "service.warehouse.WriteOff"

	p, err := s.storage.GetPart(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !p.InStock {
		return fmt.Errorf("%s: %w", op, storage.ErrPartNotInStock)
	}

	st, err := s.storage.GetCashRegisterSettings(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var ledger []storage.Transaction
	if st.CashRegisterEnabled && p.CostUah > 0 {
		desc := p.Name
		if reason != "" {
			desc += ": " + reason
		}
		ledger = append(ledger, cashregister.ColumnEntry(constants.CategoryWriteOff, desc, -p.CostUah, constants.PaymentCash, s.now()))
	}

	if err := s.storage.DeletePart(ctx, id, ledger); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("part written off", slog.String("op", op), slog.Int64("id", id), slog.Float64("cost", p.CostUah))

	return nil
}

func (s *WarehouseService) RepairParts(ctx context.Context, repairID int64) ([]storage.Part, error) {
	return s.storage.GetRepairParts(ctx, repairID)
}

// Attach moves a stock part onto the repair. A part added to an already
// paid repair is sold right away.
func (s *WarehouseService) Attach(ctx context.Context, repairID, partID int64) (*storage.Repair, error) {
	const op = "service.warehouse.Attach"

	r, err := s.storage.GetRepair(ctx, repairID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var soldAt *time.Time
	if r.IsPaid {
		now := s.now()
		soldAt = &now
	}

	if err := s.storage.AttachPart(ctx, partID, repairID, r.ReceiptID, r.IsPaid, soldAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.recalculate(ctx, op, repairID)
}

// AddToRepair records a part bought specially for the repair; it never
// passes through stock.
func (s *WarehouseService) AddToRepair(ctx context.Context, repairID int64, in PartInput) (*storage.Repair, error) {
	const op = "service.warehouse.AddToRepair"

	r, err := s.storage.GetRepair(ctx, repairID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	p, err := in.build(now)
	if err != nil {
		return nil, err
	}
	p.RepairID = &r.ID
	p.ReceiptID = &r.ReceiptID
	p.IsPaid = r.IsPaid
	if r.IsPaid {
		p.DateSold = &now
	}

	if _, err := s.storage.CreateParts(ctx, []storage.Part{p}, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.recalculate(ctx, op, repairID)
}

// Detach returns the part to stock.
func (s *WarehouseService) Detach(ctx context.Context, repairID, partID int64) (*storage.Repair, error) {
	const op = "service.warehouse.Detach"

	if err := s.storage.DetachPart(ctx, partID, repairID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.recalculate(ctx, op, repairID)
}

func (s *WarehouseService) recalculate(ctx context.Context, op string, repairID int64) (*storage.Repair, error) {
	r, err := s.totals.Recalculate(ctx, repairID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

type ImportRequest struct {
	Format          string `json:"format"`
	Text            string `json:"text"`
	Supplier        string `json:"supplier"`
	Commit          bool   `json:"commit"`
	PayFromRegister bool   `json:"payFromRegister"`
	PaymentType     string `json:"paymentType"`
}

type ImportResult struct {
	Items     []ImportItem  `json:"items"`
	Errors    []ImportError `json:"errors"`
	Created   int           `json:"created"`
	Committed bool          `json:"committed"`
}

// Import parses an invoice and, when asked to commit and the text is clean,
// receives every line.
func (s *WarehouseService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	const op = "service.warehouse.Import"

	items, parseErrs, err := ParseInvoice(req.Format, req.Text)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Items: items, Errors: parseErrs}
	if !req.Commit || len(parseErrs) > 0 || len(items) == 0 {
		return res, nil
	}

	// сначала проверяем все строки, потом пишем всё одной транзакцией
	now := s.now()
	var (
		parts  []storage.Part
		ledger []storage.Transaction
	)
	for _, it := range items {
		in := ReceiveInput{
			PartInput: PartInput{
				Supplier:    req.Supplier,
				Name:        it.Name,
				PriceUah:    it.PriceUah,
				CostUah:     it.CostUah,
				ProductCode: it.ProductCode,
			},
			Quantity: it.Quantity,
		}
		line, err := in.stock(now)
		if err != nil {
			return res, fmt.Errorf("%s: строка %d: %w", op, it.Line, err)
		}
		if req.PayFromRegister {
			entry, err := s.purchaseEntry(ctx, line[0], len(line), req.PaymentType, now)
			if err != nil {
				return res, fmt.Errorf("%s: строка %d: %w", op, it.Line, err)
			}
			ledger = append(ledger, entry)
		}
		parts = append(parts, line...)
	}

	ids, err := s.storage.CreateParts(ctx, parts, ledger)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res.Created = len(ids)
	res.Committed = true

	return res, nil
}
