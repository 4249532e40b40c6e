package repair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

var ErrInvalidRepair = errors.New("invalid repair")

type Storage interface {
	GetRepair(ctx context.Context, id int64) (*storage.Repair, error)
	NextReceiptID(ctx context.Context) (int64, error)
	CreateRepair(ctx context.Context, r storage.Repair) (int64, error)
	SaveRepair(ctx context.Context, upd storage.RepairUpdate) error
	UpdateRepairTotals(ctx context.Context, id int64, totalCost, profit float64) error
	DeleteRepair(ctx context.Context, id int64) error
	GetRepairParts(ctx context.Context, repairID int64) ([]storage.Part, error)
	GetRepairLedger(ctx context.Context, repairID int64) ([]storage.Transaction, error)
	GetCashRegisterSettings(ctx context.Context) (*storage.CashRegisterSettings, error)
}

type RepairService struct {
	log     *slog.Logger
	storage Storage
	now     func() time.Time
}

func NewRepairService(log *slog.Logger, storage Storage) *RepairService {
	return &RepairService{log: log, storage: storage, now: time.Now}
}

// Input is the editable part of a repair as sent by the client.
type Input struct {
	ReceiptID   int64      `json:"receiptId"`
	DeviceName  string     `json:"deviceName"`
	FaultDesc   string     `json:"faultDesc"`
	WorkDone    string     `json:"workDone"`
	CostLabor   float64    `json:"costLabor"`
	IsPaid      bool       `json:"isPaid"`
	Status      string     `json:"status"`
	ClientName  string     `json:"clientName"`
	ClientPhone string     `json:"clientPhone"`
	DateStart   *time.Time `json:"dateStart"`
	Note        string     `json:"note"`
	ShouldCall  bool       `json:"shouldCall"`
	Executor    string     `json:"executor"`
	PaymentType string     `json:"paymentType"`
	// StampToday заменяет существующую дату выдачи при оплате
	StampToday bool `json:"stampToday"`
}

func (in Input) validate() error {
	if in.CostLabor < 0 {
		return fmt.Errorf("%w: cost of labor is negative", ErrInvalidRepair)
	}
	if in.ReceiptID < 0 {
		return fmt.Errorf("%w: receipt id is negative", ErrInvalidRepair)
	}
	return nil
}

// Create registers a new repair. It always starts unpaid in Queue.
func (s *RepairService) Create(ctx context.Context, in Input) (*storage.Repair, error) {
	const op = "service.repair.Create"

	if err := in.validate(); err != nil {
		return nil, err
	}

	receiptID := in.ReceiptID
	if receiptID == 0 {
		next, err := s.storage.NextReceiptID(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		receiptID = next
	}

	now := s.now()
	r := storage.Repair{
		ReceiptID:   receiptID,
		DeviceName:  strings.TrimSpace(in.DeviceName),
		FaultDesc:   in.FaultDesc,
		WorkDone:    in.WorkDone,
		CostLabor:   money.Round2(in.CostLabor),
		Status:      constants.StatusQueue,
		ClientName:  strings.TrimSpace(in.ClientName),
		ClientPhone: strings.TrimSpace(in.ClientPhone),
		DateStart:   now,
		Note:        in.Note,
		ShouldCall:  in.ShouldCall,
		Executor:    in.Executor,
	}
	if in.DateStart != nil {
		r.DateStart = *in.DateStart
	}
	r.TotalCost, r.Profit = ComputeTotals(r.CostLabor, nil)

	id, err := s.storage.CreateRepair(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.ID = id

	s.log.Info("repair created", slog.String("op", op), slog.Int64("id", id), slog.Int64("receipt_id", receiptID))

	return &r, nil
}

func (s *RepairService) Get(ctx context.Context, id int64) (*storage.Repair, error) {
	return s.storage.GetRepair(ctx, id)
}

func (s *RepairService) NextReceiptID(ctx context.Context) (int64, error) {
	return s.storage.NextReceiptID(ctx)
}

// state is everything a transition needs, loaded in parallel.
type state struct {
	repair   *storage.Repair
	parts    []storage.Part
	ledger   []storage.Transaction
	settings *storage.CashRegisterSettings
}

func (s *RepairService) load(ctx context.Context, id int64) (*state, error) {
	var st state

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st.repair, err = s.storage.GetRepair(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		st.parts, err = s.storage.GetRepairParts(gCtx, id)
		if err != nil {
			return fmt.Errorf("parts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		st.ledger, err = s.storage.GetRepairLedger(gCtx, id)
		if err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		st.settings, err = s.storage.GetCashRegisterSettings(gCtx)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &st, nil
}

// Update applies a full edit. Status and payment changes go through the
// state machine, totals are recomputed from the parts currently attached.
func (s *RepairService) Update(ctx context.Context, id int64, in Input) (*storage.Repair, error) {
	const op = "service.repair.Update"

	if err := in.validate(); err != nil {
		return nil, err
	}

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	r := st.repair
	if in.ReceiptID != 0 {
		r.ReceiptID = in.ReceiptID
	}
	r.DeviceName = strings.TrimSpace(in.DeviceName)
	r.FaultDesc = in.FaultDesc
	r.WorkDone = in.WorkDone
	r.CostLabor = money.Round2(in.CostLabor)
	r.ClientName = strings.TrimSpace(in.ClientName)
	r.ClientPhone = strings.TrimSpace(in.ClientPhone)
	r.Note = in.Note
	r.ShouldCall = in.ShouldCall
	r.Executor = in.Executor
	if in.DateStart != nil {
		r.DateStart = *in.DateStart
	}

	effect := EffectNone
	statusChanged := in.Status != "" && in.Status != r.Status
	if statusChanged {
		effect, err = ApplyStatus(r, in.Status, in.PaymentType, now)
		if err != nil {
			return nil, err
		}
	}
	// при смене статуса оплата следует из статуса, флаг isPaid из формы устарел
	if !statusChanged && in.IsPaid != r.IsPaid {
		e, err := ApplyPayment(r, in.IsPaid, in.PaymentType, in.StampToday, now)
		if err != nil {
			return nil, err
		}
		effect = combine(effect, e)
	}

	if err := s.persist(ctx, st, effect, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

// combine folds two consecutive effects; paying and unpaying in one edit
// cancel out.
func combine(a, b Effect) Effect {
	switch {
	case a == EffectNone:
		return b
	case b == EffectNone:
		return a
	case a != b:
		return EffectNone
	default:
		return a
	}
}

func (s *RepairService) SetStatus(ctx context.Context, id int64, status, paymentType string) (*storage.Repair, error) {
	const op = "service.repair.SetStatus"

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	effect, err := ApplyStatus(st.repair, status, paymentType, now)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, st, effect, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return st.repair, nil
}

func (s *RepairService) SetPaid(ctx context.Context, id int64, paid bool, paymentType string, stampToday bool) (*storage.Repair, error) {
	const op = "service.repair.SetPaid"

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	effect, err := ApplyPayment(st.repair, paid, paymentType, stampToday, now)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, st, effect, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return st.repair, nil
}

// persist writes the repair with its part and ledger side effects in one
// storage transaction.
func (s *RepairService) persist(ctx context.Context, st *state, effect Effect, now time.Time) error {
	r := st.repair
	r.TotalCost, r.Profit = ComputeTotals(r.CostLabor, st.parts)

	upd := storage.RepairUpdate{Repair: *r}

	switch effect {
	case EffectBecamePaid:
		paid := true
		upd.PartsPaid = &paid
		upd.SoldAt = &now
		if cashregister.Accounts(*st.settings, *r) {
			upd.Ledger = append(upd.Ledger, cashregister.IncomeEntry(*r, *st.settings, now))
		}
	case EffectBecameUnpaid:
		paid := false
		upd.PartsPaid = &paid
		if entry := cashregister.CancelEntry(*r, st.ledger, now); entry != nil {
			upd.Ledger = append(upd.Ledger, *entry)
		}
	}

	if err := s.storage.SaveRepair(ctx, upd); err != nil {
		return err
	}

	if effect != EffectNone {
		s.log.Info("repair payment changed",
			slog.Int64("id", r.ID),
			slog.String("effect", effect.String()),
			slog.Int("ledger_entries", len(upd.Ledger)),
		)
	}

	return nil
}

// Delete removes the repair for good. Unpaid parts go back to stock.
func (s *RepairService) Delete(ctx context.Context, id int64) error {
	const op = "service.repair.Delete"

	if err := s.storage.DeleteRepair(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("repair deleted", slog.String("op", op), slog.Int64("id", id))

	return nil
}

// Recalculate refreshes the stored totals after the parts list changed.
func (s *RepairService) Recalculate(ctx context.Context, id int64) (*storage.Repair, error) {
	const op = "service.repair.Recalculate"

	var (
		r     *storage.Repair
		parts []storage.Part
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r, err = s.storage.GetRepair(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		parts, err = s.storage.GetRepairParts(gCtx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.TotalCost, r.Profit = ComputeTotals(r.CostLabor, parts)
	if err := s.storage.UpdateRepairTotals(ctx, id, r.TotalCost, r.Profit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}
