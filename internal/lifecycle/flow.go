package lifecycle

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"frontdesk/internal/repair"
	"frontdesk/pkg/session"
)

// RecordSource fetches the user's booked repairs. Transport failures are
// returned as errors; the flow degrades them to an empty snapshot.
type RecordSource interface {
	RepairRecords(ctx context.Context, cred session.Credential, username string) ([]repair.Record, error)
}

type BookingMutator interface {
	CancelRepair(ctx context.Context, cred session.Credential, repairID int64) error
	RescheduleBooking(ctx context.Context, cred session.Credential, bookingID int64, date repair.Date, start repair.Clock) error
}

type AvailabilitySource interface {
	AvailableStartTimes(ctx context.Context, cred session.Credential, date repair.Date, durationMinutes int, garageID int64) ([]repair.Clock, error)
}

// Forecast is the weather preview shown next to a candidate service date.
type Forecast struct {
	Summary      string  `json:"summary"`
	MaxTemp      float64 `json:"maxTemp"`
	MinTemp      float64 `json:"minTemp"`
	MaxWindSpeed float64 `json:"maxWindSpeed"`
}

type ForecastSource interface {
	Forecast(ctx context.Context, cred session.Credential, city string, date repair.Date) (Forecast, error)
}

// Booking-date constraints: a new service date must fall within 60 days of
// today and not on a Sunday; a forecast is only available 13 days ahead.
const (
	MaxBookingDaysAhead  = 60
	MaxForecastDaysAhead = 13
)

// Selection is the flow's selection state. It is replaced wholesale on each
// transition; a nil Record means nothing is selected, and drafts are only
// meaningful while a record is selected.
type Selection struct {
	Record    *repair.Record
	DraftDate *repair.Date
	DraftTime *repair.Clock
}

// Deps are the external collaborators a Flow talks to.
type Deps struct {
	Records   RecordSource
	Bookings  BookingMutator
	Times     AvailabilitySource
	Forecasts ForecastSource

	// Now is the clock; defaults to time.Now.
	Now func() time.Time

	Log *logrus.Entry
}

// Flow tracks one user's view of their booked repairs: the classified
// snapshot plus the current selection being edited. All methods are
// synchronous and must be called from a single goroutine; the session layer
// serializes access per user.
type Flow struct {
	deps     Deps
	username string

	snapshot []repair.Record
	buckets  Buckets
	sel      Selection
}

func NewFlow(username string, deps Deps) *Flow {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Flow{deps: deps, username: username}
}

// Activate fetches a fresh snapshot, classifies it and resets the
// selection. A failed fetch degrades to an empty snapshot.
func (f *Flow) Activate(ctx context.Context, cred session.Credential) {
	records, err := f.deps.Records.RepairRecords(ctx, cred, f.username)
	if err != nil {
		f.deps.Log.WithError(err).WithField("username", f.username).Error("fetching repair records failed")
		records = nil
	}
	f.snapshot = records
	f.buckets = Classify(records, f.deps.Now())
	f.sel = Selection{}
	f.deps.Log.WithFields(logrus.Fields{
		"username":   f.username,
		"upcoming":   len(f.buckets.Upcoming),
		"inProgress": len(f.buckets.InProgress),
		"completed":  len(f.buckets.Completed),
	}).Info("repair records classified")
}

func (f *Flow) Buckets() Buckets {
	return f.buckets
}

func (f *Flow) Selection() Selection {
	return f.sel
}

// Select picks an upcoming record for editing. Records that are already in
// progress or completed cannot be selected. Any previous drafts are dropped.
func (f *Flow) Select(id int64) bool {
	r, ok := f.buckets.FindUpcoming(id)
	if !ok {
		f.deps.Log.WithField("id", id).Info("selection rejected, not an upcoming service")
		return false
	}
	f.sel = Selection{Record: &r}
	f.deps.Log.WithFields(logrus.Fields{"id": id, "service": r.Name}).Info("service selected")
	return true
}

func (f *Flow) Deselect() {
	f.sel = Selection{}
}

// DateResult reports what happened to a candidate service date.
type DateResult struct {
	// Invalid carries the validation message for an out-of-range date; the
	// draft is left unchanged and no lookups run.
	Invalid string `json:"invalid,omitempty"`

	// Cleared is set when the date fell on the non-working day; the draft
	// date is silently dropped instead of erroring.
	Cleared bool `json:"cleared,omitempty"`

	Times []repair.Clock `json:"times,omitempty"`

	Forecast *Forecast `json:"forecast,omitempty"`

	// ForecastNotice explains a skipped or failed forecast lookup.
	ForecastNotice string `json:"forecastNotice,omitempty"`
}

// PickDate validates a candidate new service date and, when it is
// acceptable, stores it as the draft, looks up available start times, and
// attaches a weather preview when the date is near enough.
func (f *Flow) PickDate(ctx context.Context, cred session.Credential, d repair.Date) DateResult {
	if f.sel.Record == nil {
		return DateResult{Invalid: "Select an upcoming service first."}
	}

	today := repair.DateOf(f.deps.Now())
	switch {
	case d.Before(today):
		return DateResult{Invalid: "Too early, choose another date."}
	case d.After(today.AddDays(MaxBookingDaysAhead)):
		return DateResult{Invalid: "Too late, choose another date."}
	case d.Weekday() == time.Sunday:
		f.sel = Selection{Record: f.sel.Record}
		return DateResult{Cleared: true}
	}

	f.sel = Selection{Record: f.sel.Record, DraftDate: &d}
	f.deps.Log.WithField("date", d.String()).Info("service date selected")

	res := DateResult{}
	rec := *f.sel.Record
	times, err := f.deps.Times.AvailableStartTimes(ctx, cred, d, rec.RepairTimeMinutes, rec.Booking.Garage.ID)
	if err != nil {
		f.deps.Log.WithError(err).Error("available times lookup failed")
		times = nil
	}
	res.Times = times

	if d.After(today.AddDays(MaxForecastDaysAhead)) {
		res.ForecastNotice = "Forecast is only available for 13 days ahead."
		return res
	}
	fc, err := f.deps.Forecasts.Forecast(ctx, cred, rec.Booking.Garage.City(), d)
	if err != nil {
		f.deps.Log.WithError(err).Error("forecast lookup failed")
		res.ForecastNotice = "Forecast is currently unavailable."
		return res
	}
	res.Forecast = &fc
	return res
}

// PickTime stores the draft start time. A date must already be drafted.
func (f *Flow) PickTime(c repair.Clock) bool {
	if f.sel.Record == nil || f.sel.DraftDate == nil {
		return false
	}
	f.sel = Selection{Record: f.sel.Record, DraftDate: f.sel.DraftDate, DraftTime: &c}
	f.deps.Log.WithField("time", c.String()).Info("service time selected")
	return true
}

// Cancel cancels the selected repair if the mutation gate allows it. On
// success the snapshot is re-fetched, re-classified, and the selection
// cleared.
func (f *Flow) Cancel(ctx context.Context, cred session.Credential) Outcome {
	if f.sel.Record == nil {
		return noSelectionOutcome()
	}
	rec := *f.sel.Record
	if !CanMutate(rec, f.deps.Now()) {
		f.deps.Log.WithField("id", rec.ID).Info("cancel rejected, inside 2 hour window")
		return tooLateOutcome("cancel service", rec.Booking.Garage)
	}
	if err := f.deps.Bookings.CancelRepair(ctx, cred, rec.ID); err != nil {
		f.deps.Log.WithError(err).WithField("id", rec.ID).Error("cancel failed")
		return failedOutcome("cancel service")
	}
	f.Activate(ctx, cred)
	return okOutcome("Service canceled.")
}

// Reschedule moves the selected repair to the drafted date and time. The
// time-authorization gate is checked before draft completeness, so a late
// attempt reports "too late" rather than "incomplete".
func (f *Flow) Reschedule(ctx context.Context, cred session.Credential) Outcome {
	if f.sel.Record == nil {
		return noSelectionOutcome()
	}
	rec := *f.sel.Record
	if !CanMutate(rec, f.deps.Now()) {
		f.deps.Log.WithField("id", rec.ID).Info("reschedule rejected, inside 2 hour window")
		return tooLateOutcome("change service time", rec.Booking.Garage)
	}
	if f.sel.DraftDate == nil || f.sel.DraftTime == nil {
		return incompleteOutcome()
	}
	if err := f.deps.Bookings.RescheduleBooking(ctx, cred, rec.Booking.ID, *f.sel.DraftDate, *f.sel.DraftTime); err != nil {
		f.deps.Log.WithError(err).WithField("bookingId", rec.Booking.ID).Error("reschedule failed")
		return failedOutcome("change service time")
	}
	f.Activate(ctx, cred)
	return okOutcome("Service time changed.")
}
