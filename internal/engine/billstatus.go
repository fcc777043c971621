// Package engine holds the pure computation core of the app: bill due-date
// classification and the adaptive budget health calculator. Functions here
// take "today" as an explicit argument and never touch the system clock,
// storage, or the network, so every result is deterministic and replayable.
package engine

import (
	"time"

	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/pkg/datetime"
)

// DaysUntilDue returns the number of whole calendar days from today until the
// bill's due date. Both dates are normalized to midnight, so a bill due today
// always yields 0 regardless of the clock time in today. Negative means
// overdue by that many days.
func DaysUntilDue(bill model.Bill, today time.Time) int {
	return datetime.DaysBetween(today, bill.DueDate.Time)
}

// Classify buckets a bill relative to today. A non-empty payment history wins
// over any date arithmetic: a paid bill stays paid for tab filtering even if
// its due date has rolled past. Otherwise due-today-or-earlier is overdue,
// within the reminder window is urgent, and the rest is upcoming.
func Classify(bill model.Bill, today time.Time) model.BillStatus {
	if bill.IsPaid() {
		return model.StatusPaid
	}

	days := DaysUntilDue(bill, today)
	switch {
	case days <= 0:
		return model.StatusOverdue
	case days <= bill.ReminderDays:
		return model.StatusUrgent
	default:
		return model.StatusUpcoming
	}
}

// FilterByStatus returns the active bills whose classification matches status.
// Inactive bills never match any status. The urgent bucket additionally
// requires a strictly positive days-until-due, which Classify already
// guarantees for unpaid bills.
func FilterByStatus(bills []model.Bill, status model.BillStatus, today time.Time) []model.Bill {
	var out []model.Bill
	for _, b := range bills {
		if !b.IsActive {
			continue
		}
		if Classify(b, today) != status {
			continue
		}
		if status == model.StatusUrgent && DaysUntilDue(b, today) <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// FilterUpcomingWithinDays returns active bills due strictly after today and
// no more than windowDays out. Payment history is not consulted.
func FilterUpcomingWithinDays(bills []model.Bill, windowDays int, today time.Time) []model.Bill {
	var out []model.Bill
	for _, b := range bills {
		if !b.IsActive {
			continue
		}
		days := DaysUntilDue(b, today)
		if days > 0 && days <= windowDays {
			out = append(out, b)
		}
	}
	return out
}

// FilterForDate returns active bills whose due date falls on the given
// calendar date. Comparison is date-only.
func FilterForDate(bills []model.Bill, date time.Time) []model.Bill {
	target := datetime.FromTime(date)
	var out []model.Bill
	for _, b := range bills {
		if !b.IsActive {
			continue
		}
		if b.DueDate.Equal(target) {
			out = append(out, b)
		}
	}
	return out
}

// MarkAsPaid returns a copy of the bill with a payment for its full amount
// appended, dated today. Each call records a distinct payment event; calling
// it twice appends two entries. Cancelling any pending reminder is the
// notification collaborator's job, not this function's.
func MarkAsPaid(bill model.Bill, today time.Time) model.Bill {
	payment := model.BillPayment{
		BillID: bill.ID,
		Date:   datetime.FromTime(today),
		Amount: bill.Amount,
	}
	paid := bill
	paid.PaymentHistory = append(append([]model.BillPayment{}, bill.PaymentHistory...), payment)
	return paid
}
