package constants

// Статусы ремонта
const (
	StatusQueue      = "Queue"
	StatusInProgress = "InProgress"
	StatusWaiting    = "Waiting"
	StatusReady      = "Ready"
	StatusNoAnswer   = "NoAnswer"
	StatusOdessa     = "Odessa"
	StatusIssued     = "Issued"
)

// RepairStatuses in lifecycle order.
var RepairStatuses = []string{
	StatusQueue,
	StatusInProgress,
	StatusWaiting,
	StatusReady,
	StatusNoAnswer,
	StatusOdessa,
	StatusIssued,
}

func IsRepairStatus(s string) bool {
	for _, st := range RepairStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsFinalStatus reports whether a repair in this status has left the shop.
func IsFinalStatus(s string) bool {
	return s == StatusIssued
}

// Способы оплаты
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

func IsPaymentType(p string) bool {
	return p == PaymentCash || p == PaymentCard
}
