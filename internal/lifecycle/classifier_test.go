package lifecycle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"frontdesk/internal/repair"
)

func recordAt(id int64, date repair.Date, start, end repair.Clock) repair.Record {
	return repair.Record{
		ID:                id,
		Name:              "Oil change",
		Cost:              decimal.RequireFromString("100.00"),
		RepairTimeMinutes: 60,
		Booking: repair.BookingWindow{
			ID:        id * 10,
			Date:      date,
			StartHour: start,
			EndHour:   end,
			Garage:    repair.Garage{ID: 1, Name: "QuickFix", Address: "Warsaw Main Street 12"},
		},
	}
}

func TestClassifyPartitionsByWindow(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	day := repair.DateOf(now)

	records := []repair.Record{
		recordAt(1, day.AddDays(1), repair.Clock{Hour: 9}, repair.Clock{Hour: 10}),  // tomorrow
		recordAt(2, day, repair.Clock{Hour: 11}, repair.Clock{Hour: 13}),            // running now
		recordAt(3, day, repair.Clock{Hour: 8}, repair.Clock{Hour: 9}),              // finished
		recordAt(4, day, repair.Clock{Hour: 14}, repair.Clock{Hour: 15}),            // later today
	}

	b := Classify(records, now)

	if len(b.Upcoming) != 2 || b.Upcoming[0].ID != 1 || b.Upcoming[1].ID != 4 {
		t.Fatalf("upcoming = %+v", ids(b.Upcoming))
	}
	if len(b.InProgress) != 1 || b.InProgress[0].ID != 2 {
		t.Fatalf("inProgress = %+v", ids(b.InProgress))
	}
	if len(b.Completed) != 1 || b.Completed[0].ID != 3 {
		t.Fatalf("completed = %+v", ids(b.Completed))
	}
}

func TestClassifyBoundaryTies(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	day := repair.DateOf(now)

	// start == now: not upcoming, in progress while end > now.
	starting := recordAt(1, day, repair.Clock{Hour: 12}, repair.Clock{Hour: 13})
	// end == now: completed, not in progress.
	ending := recordAt(2, day, repair.Clock{Hour: 11}, repair.Clock{Hour: 12})

	b := Classify([]repair.Record{starting, ending}, now)

	if len(b.Upcoming) != 0 {
		t.Fatalf("start==now must not be upcoming: %+v", ids(b.Upcoming))
	}
	if len(b.InProgress) != 1 || b.InProgress[0].ID != 1 {
		t.Fatalf("inProgress = %+v", ids(b.InProgress))
	}
	if len(b.Completed) != 1 || b.Completed[0].ID != 2 {
		t.Fatalf("completed = %+v", ids(b.Completed))
	}
}

func TestClassifyPartitionTotality(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	day := repair.DateOf(now)

	records := []repair.Record{
		recordAt(1, day.AddDays(-1), repair.Clock{Hour: 9}, repair.Clock{Hour: 10}),
		recordAt(2, day, repair.Clock{Hour: 12}, repair.Clock{Hour: 12, Minute: 30}),
		recordAt(3, day, repair.Clock{Hour: 11, Minute: 30}, repair.Clock{Hour: 12}),
		recordAt(4, day.AddDays(30), repair.Clock{Hour: 9}, repair.Clock{Hour: 10}),
	}

	b := Classify(records, now)
	total := len(b.Upcoming) + len(b.InProgress) + len(b.Completed)
	if total != len(records) {
		t.Fatalf("expected every record in exactly one bucket, got %d of %d", total, len(records))
	}
}

func TestClassifyNormalizesCostHalfDown(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	day := repair.DateOf(now)

	r := recordAt(1, day.AddDays(1), repair.Clock{Hour: 9}, repair.Clock{Hour: 10})
	r.Cost = decimal.RequireFromString("10.5")
	r2 := recordAt(2, day.AddDays(1), repair.Clock{Hour: 9}, repair.Clock{Hour: 10})
	r2.Cost = decimal.RequireFromString("10.51")

	records := []repair.Record{r, r2}
	b := Classify(records, now)

	if got := b.Upcoming[0].Cost.String(); got != "10" {
		t.Fatalf("cost 10.5 rounded to %s, want 10", got)
	}
	if got := b.Upcoming[1].Cost.String(); got != "11" {
		t.Fatalf("cost 10.51 rounded to %s, want 11", got)
	}
	// The input slice keeps its precision-bearing values.
	if !records[0].Cost.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("source record mutated: %s", records[0].Cost)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	day := repair.DateOf(now)

	records := []repair.Record{
		recordAt(1, day.AddDays(1), repair.Clock{Hour: 9}, repair.Clock{Hour: 10}),
		recordAt(2, day, repair.Clock{Hour: 8}, repair.Clock{Hour: 9}),
	}
	first := Classify(records, now)
	second := Classify(records, now)

	if len(first.Upcoming) != len(second.Upcoming) ||
		len(first.InProgress) != len(second.InProgress) ||
		len(first.Completed) != len(second.Completed) {
		t.Fatalf("classification not stable across calls")
	}
	if !first.Upcoming[0].Cost.Equal(second.Upcoming[0].Cost) {
		t.Fatalf("cost normalization not deterministic")
	}
}

func TestCanMutateTwoHourGate(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	day := repair.DateOf(now)

	tests := []struct {
		name  string
		start repair.Clock
		want  bool
	}{
		{"90 minutes ahead", repair.Clock{Hour: 13, Minute: 30}, false},
		{"exactly 2 hours ahead", repair.Clock{Hour: 14}, false},
		{"150 minutes ahead", repair.Clock{Hour: 14, Minute: 30}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recordAt(1, day, tt.start, repair.Clock{Hour: 18})
			if got := CanMutate(r, now); got != tt.want {
				t.Fatalf("CanMutate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanMutateMonotonicInNow(t *testing.T) {
	day := repair.Date{Year: 2026, Month: time.September, Day: 1}
	r := recordAt(1, day, repair.Clock{Hour: 14, Minute: 30}, repair.Clock{Hour: 18})

	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	if !CanMutate(r, now) {
		t.Fatalf("expected mutable at now")
	}
	for _, back := range []time.Duration{time.Minute, time.Hour, 24 * time.Hour} {
		if !CanMutate(r, now.Add(-back)) {
			t.Fatalf("gate must stay open at earlier now (-%v)", back)
		}
	}
}

func ids(rs []repair.Record) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
