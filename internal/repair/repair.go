package repair

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Garage is the workshop a booking occupies.
type Garage struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// City is the garage's city lookup key used by the weather forecast:
// the address prefix up to the first space.
func (g Garage) City() string {
	if i := strings.IndexByte(g.Address, ' '); i >= 0 {
		return g.Address[:i]
	}
	return g.Address
}

// Car is the vehicle summary attached to a repair record.
type Car struct {
	ID     int64  `json:"id"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Type   string `json:"type"`
	Engine string `json:"engine"`
}

// BookingWindow is the date/start/end interval during which a repair
// occupies a garage resource. End is derived server-side as start plus the
// repair duration and is always after start.
type BookingWindow struct {
	ID        int64  `json:"id"`
	Date      Date   `json:"date"`
	StartHour Clock  `json:"startHour"`
	EndHour   Clock  `json:"endHour"`
	Garage    Garage `json:"garageDto"`
}

func (w BookingWindow) Start() time.Time {
	return w.Date.At(w.StartHour)
}

func (w BookingWindow) End() time.Time {
	return w.Date.At(w.EndHour)
}

func (w BookingWindow) Valid() bool {
	return w.Start().Before(w.End())
}

// Record is a single booked repair tied to a vehicle and a booking window.
// It is a read-only snapshot fetched from the backend; mutations always go
// through the booking API and trigger a full re-fetch.
type Record struct {
	ID                int64           `json:"id"`
	Car               Car             `json:"carDto"`
	Name              string          `json:"name"`
	Cost              decimal.Decimal `json:"cost"`
	RepairTimeMinutes int             `json:"repairTimeInMinutes"`
	Status            string          `json:"status"`
	Booking           BookingWindow   `json:"bookingDto"`
}

var half = decimal.RequireFromString("0.5")

// RoundCostHalfDown rounds a cost to a whole amount for display: nearest
// integer, with exact .5 ties going toward zero (10.5 -> 10, 10.51 -> 11).
func RoundCostHalfDown(d decimal.Decimal) decimal.Decimal {
	trunc := d.Truncate(0)
	frac := d.Sub(trunc).Abs()
	if frac.GreaterThan(half) {
		if d.IsNegative() {
			return trunc.Sub(decimal.NewFromInt(1))
		}
		return trunc.Add(decimal.NewFromInt(1))
	}
	return trunc
}
