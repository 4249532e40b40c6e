package repair

import (
	"errors"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

var (
	ErrInvalidStatus       = errors.New("unknown repair status")
	ErrPaymentTypeRequired = errors.New("payment type is required to issue an unpaid repair")
	ErrInvalidPaymentType  = errors.New("payment type must be cash or card")
)

// Effect is the money side effect of a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectBecamePaid
	EffectBecameUnpaid
)

func (e Effect) String() string {
	switch e {
	case EffectBecamePaid:
		return "became_paid"
	case EffectBecameUnpaid:
		return "became_unpaid"
	default:
		return "none"
	}
}

// ApplyStatus moves the repair to status.
//
// Ready stamps dateEnd. Issued on an unpaid repair takes the payment: it needs
// a payment type and stamps isPaid, dateEnd and paymentType. Leaving Issued
// (any other status on a paid repair) clears isPaid and leaves the money
// fields alone.
func ApplyStatus(r *storage.Repair, status, paymentType string, now time.Time) (Effect, error) {
	if !constants.IsRepairStatus(status) {
		return EffectNone, ErrInvalidStatus
	}

	if status == constants.StatusIssued {
		if r.IsPaid {
			r.Status = status
			return EffectNone, nil
		}
		if err := checkPaymentType(paymentType); err != nil {
			return EffectNone, err
		}
		r.Status = status
		r.IsPaid = true
		r.DateEnd = &now
		r.PaymentType = paymentType
		return EffectBecamePaid, nil
	}

	r.Status = status
	if status == constants.StatusReady {
		r.DateEnd = &now
	}

	if r.IsPaid {
		r.IsPaid = false
		return EffectBecameUnpaid, nil
	}

	return EffectNone, nil
}

// ApplyPayment toggles the paid flag.
//
// Paying goes through the Issued path. stampToday answers the "set payment
// date to today?" question: an existing dateEnd is replaced only when it is
// true, a missing one is always stamped. Unpaying reverts the status to Ready.
func ApplyPayment(r *storage.Repair, paid bool, paymentType string, stampToday bool, now time.Time) (Effect, error) {
	if !paid {
		if !r.IsPaid {
			return EffectNone, nil
		}
		r.IsPaid = false
		r.Status = constants.StatusReady
		return EffectBecameUnpaid, nil
	}

	if r.IsPaid {
		r.Status = constants.StatusIssued
		return EffectNone, nil
	}

	if err := checkPaymentType(paymentType); err != nil {
		return EffectNone, err
	}

	r.Status = constants.StatusIssued
	r.IsPaid = true
	r.PaymentType = paymentType
	if r.DateEnd == nil || stampToday {
		r.DateEnd = &now
	}

	return EffectBecamePaid, nil
}

func checkPaymentType(paymentType string) error {
	if paymentType == "" {
		return ErrPaymentTypeRequired
	}
	if !constants.IsPaymentType(paymentType) {
		return ErrInvalidPaymentType
	}
	return nil
}

// ComputeTotals returns totalCost (labor plus part prices) and profit (sum of
// part profits).
func ComputeTotals(costLabor float64, parts []storage.Part) (totalCost, profit float64) {
	prices := make([]float64, 0, len(parts)+1)
	profits := make([]float64, 0, len(parts))

	prices = append(prices, costLabor)
	for _, p := range parts {
		prices = append(prices, p.PriceUah)
		profits = append(profits, p.Profit)
	}

	return money.Sum(prices...), money.Sum(profits...)
}
