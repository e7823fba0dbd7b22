package lifecycle

import (
	"time"

	"frontdesk/internal/repair"
)

// Buckets partitions booked repairs by where their booking window sits
// relative to a reference instant. Every record lands in exactly one bucket
// and each bucket preserves the input order.
type Buckets struct {
	Upcoming   []repair.Record `json:"upcoming"`
	InProgress []repair.Record `json:"inProgress"`
	Completed  []repair.Record `json:"completed"`
}

// Classify partitions records relative to now:
//
//	upcoming    start > now
//	inProgress  start <= now < end
//	completed   end <= now
//
// A record starting exactly now is already in progress; one ending exactly
// now is completed. Costs are normalized to whole display amounts
// (round-half-down) on every call; the precision-bearing source values live
// only in the backend.
func Classify(records []repair.Record, now time.Time) Buckets {
	var b Buckets
	for _, r := range records {
		r.Cost = repair.RoundCostHalfDown(r.Cost)
		switch {
		case r.Booking.Start().After(now):
			b.Upcoming = append(b.Upcoming, r)
		case r.Booking.End().After(now):
			b.InProgress = append(b.InProgress, r)
		default:
			b.Completed = append(b.Completed, r)
		}
	}
	return b
}

// FindUpcoming returns the upcoming record with the given id, if any.
func (b Buckets) FindUpcoming(id int64) (repair.Record, bool) {
	for _, r := range b.Upcoming {
		if r.ID == id {
			return r, true
		}
	}
	return repair.Record{}, false
}
