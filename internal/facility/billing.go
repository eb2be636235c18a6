package facility

import (
	"math"

	"github.com/greenvvay/Parking/internal/domain"
)

// Payment is the fee due for ticket at the clock's current time, priced with
// the tariff of the current weekday. Sessions that cross midnight are billed
// against the exit day only.
func (f *Facility) Payment(ticket *domain.Ticket) domain.Price {
	if !f.owns(ticket) {
		return 0
	}
	t := f.currentTariff()
	if t == nil {
		return 0
	}
	now := f.clock.Now()
	return dayFee(t[domain.WeekdayIndex(now.Weekday())], ticket.EntryTime(), domain.TimeOfDayOf(now))
}

// ProcessPayment accepts amount when it covers Payment(ticket) and marks the
// ticket paid. A paid ticket keeps being accepted. Nil and foreign tickets owe
// nothing here, so any valid amount is accepted without marking them.
// Negative and NaN amounts are always rejected.
func (f *Facility) ProcessPayment(ticket *domain.Ticket, amount domain.Price) bool {
	if math.IsNaN(float64(amount)) || amount < 0 {
		return false
	}
	if !f.owns(ticket) {
		return true
	}
	if ticket.Paid() {
		return true
	}
	if amount < f.Payment(ticket) {
		return false
	}
	ticket.MarkPaid()
	return true
}

func (f *Facility) owns(ticket *domain.Ticket) bool {
	return ticket != nil && ticket.FacilityID() == f.id
}

// dayFee sums price*minutes over the part of every entry that overlaps
// [entry, now].
func dayFee(day domain.TariffDuringDay, entry, now domain.TimeOfDay) domain.Price {
	start, end := entry.Minutes(), now.Minutes()
	var total domain.Price
	for _, e := range day {
		from, to := e.Interval.From.Minutes(), e.Interval.To.Minutes()
		if end < from || start > to {
			continue
		}
		overlap := min(to, end) - max(from, start)
		if overlap <= 0 {
			// entry after now: the session crossed midnight
			continue
		}
		total += e.Price * domain.Price(overlap)
	}
	return total
}
