package repair

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

func TestApplyStatus_IssuedWhileUnpaid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, from := range constants.RepairStatuses {
		if from == constants.StatusIssued {
			continue
		}
		t.Run(from, func(t *testing.T) {
			r := &storage.Repair{Status: from}
			effect, err := ApplyStatus(r, constants.StatusIssued, constants.PaymentCard, now)
			require.NoError(t, err)

			assert.Equal(t, EffectBecamePaid, effect)
			assert.True(t, r.IsPaid)
			require.NotNil(t, r.DateEnd)
			assert.True(t, r.DateEnd.Equal(now))
			assert.Equal(t, constants.PaymentCard, r.PaymentType)
			assert.Equal(t, constants.StatusIssued, r.Status)
		})
	}
}

func TestApplyStatus_IssuedNeedsPaymentType(t *testing.T) {
	r := &storage.Repair{Status: constants.StatusReady}

	_, err := ApplyStatus(r, constants.StatusIssued, "", time.Now())
	assert.ErrorIs(t, err, ErrPaymentTypeRequired)

	_, err = ApplyStatus(r, constants.StatusIssued, "bitcoin", time.Now())
	assert.ErrorIs(t, err, ErrInvalidPaymentType)

	assert.False(t, r.IsPaid)
	assert.Equal(t, constants.StatusReady, r.Status)
}

func TestApplyStatus_IssuedWhenAlreadyPaid(t *testing.T) {
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &storage.Repair{Status: constants.StatusReady, IsPaid: true, DateEnd: &end, PaymentType: constants.PaymentCash}

	effect, err := ApplyStatus(r, constants.StatusIssued, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, EffectNone, effect)
	assert.True(t, r.DateEnd.Equal(end))
	assert.Equal(t, constants.PaymentCash, r.PaymentType)
}

func TestApplyStatus_LeavingIssuedClearsPaid(t *testing.T) {
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &storage.Repair{Status: constants.StatusIssued, IsPaid: true, DateEnd: &end, PaymentType: constants.PaymentCash, TotalCost: 700}

	effect, err := ApplyStatus(r, constants.StatusInProgress, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, EffectBecameUnpaid, effect)
	assert.False(t, r.IsPaid)
	assert.Equal(t, constants.StatusInProgress, r.Status)
	assert.Equal(t, constants.PaymentCash, r.PaymentType)
	assert.Equal(t, 700.0, r.TotalCost)
	assert.True(t, r.DateEnd.Equal(end))
}

func TestApplyStatus_ReadyStampsDateEnd(t *testing.T) {
	now := time.Now()
	r := &storage.Repair{Status: constants.StatusInProgress}

	effect, err := ApplyStatus(r, constants.StatusReady, "", now)
	require.NoError(t, err)
	assert.Equal(t, EffectNone, effect)
	require.NotNil(t, r.DateEnd)
	assert.True(t, r.DateEnd.Equal(now))
}

func TestApplyStatus_Unknown(t *testing.T) {
	r := &storage.Repair{Status: constants.StatusQueue}
	_, err := ApplyStatus(r, "Lost", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, constants.StatusQueue, r.Status)
}

func TestApplyPayment(t *testing.T) {
	old := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		repair     storage.Repair
		paid       bool
		stampToday bool
		wantEffect Effect
		wantStatus string
		wantEnd    *time.Time
	}{
		{
			name:       "pay without date stamps now",
			repair:     storage.Repair{Status: constants.StatusWaiting},
			paid:       true,
			wantEffect: EffectBecamePaid,
			wantStatus: constants.StatusIssued,
			wantEnd:    &now,
		},
		{
			name:       "pay keeps existing date",
			repair:     storage.Repair{Status: constants.StatusReady, DateEnd: &old},
			paid:       true,
			wantEffect: EffectBecamePaid,
			wantStatus: constants.StatusIssued,
			wantEnd:    &old,
		},
		{
			name:       "pay with stamp today",
			repair:     storage.Repair{Status: constants.StatusReady, DateEnd: &old},
			paid:       true,
			stampToday: true,
			wantEffect: EffectBecamePaid,
			wantStatus: constants.StatusIssued,
			wantEnd:    &now,
		},
		{
			name:       "unpay reverts to ready",
			repair:     storage.Repair{Status: constants.StatusIssued, IsPaid: true, DateEnd: &old, PaymentType: constants.PaymentCash},
			paid:       false,
			wantEffect: EffectBecameUnpaid,
			wantStatus: constants.StatusReady,
			wantEnd:    &old,
		},
		{
			name:       "unpay unpaid is no-op",
			repair:     storage.Repair{Status: constants.StatusQueue},
			paid:       false,
			wantEffect: EffectNone,
			wantStatus: constants.StatusQueue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.repair
			effect, err := ApplyPayment(&r, tt.paid, constants.PaymentCash, tt.stampToday, now)
			require.NoError(t, err)

			assert.Equal(t, tt.wantEffect, effect)
			assert.Equal(t, tt.wantStatus, r.Status)
			assert.Equal(t, tt.paid, r.IsPaid)
			if tt.wantEnd == nil {
				assert.Nil(t, r.DateEnd)
			} else {
				require.NotNil(t, r.DateEnd)
				assert.True(t, r.DateEnd.Equal(*tt.wantEnd))
			}
		})
	}
}

func TestApplyPayment_NeedsPaymentType(t *testing.T) {
	r := &storage.Repair{Status: constants.StatusReady}
	_, err := ApplyPayment(r, true, "", false, time.Now())
	assert.ErrorIs(t, err, ErrPaymentTypeRequired)
	assert.False(t, r.IsPaid)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name       string
		labor      float64
		parts      []storage.Part
		wantTotal  float64
		wantProfit float64
	}{
		{"labor only", 350, nil, 350, 0},
		{"with parts", 200, []storage.Part{{PriceUah: 1200, Profit: 400}, {PriceUah: 99.99, Profit: 30.01}}, 1499.99, 430.01},
		{"float noise", 0.1, []storage.Part{{PriceUah: 0.2, Profit: 0.1}, {PriceUah: 0.2, Profit: 0.2}}, 0.5, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, profit := ComputeTotals(tt.labor, tt.parts)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantProfit, profit)
		})
	}
}
