// Package cascade backs the dependent car-attribute selection
// year -> make -> type -> model. A model list is only meaningful for a
// fully specified (year, make, type) triple; changing any of the three
// after it was confirmed invalidates the models until the user asks for a
// refresh.
package cascade

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"frontdesk/pkg/session"
)

// MinYear is the earliest selectable car year.
const MinYear = 1950

// ErrIncompleteSelection is returned by Refresh when year, make and type
// are not all chosen yet.
var ErrIncompleteSelection = errors.New("pick year, make and type first")

// Lookup provides the reference data the cascade depends on.
type Lookup interface {
	Makes(ctx context.Context, cred session.Credential) ([]string, error)
	ModelsFor(ctx context.Context, cred session.Credential, carMake, carType string, year int) ([]string, error)
}

// Triple is a (year, make, type) combination.
type Triple struct {
	Year int    `json:"year"`
	Make string `json:"make"`
	Type string `json:"type"`
}

func (t Triple) complete() bool {
	return t.Year > MinYear && t.Make != "" && t.Type != ""
}

// invalidates is the single place deciding whether a new in-progress triple
// drops the confirmed model list: any field differing does.
func invalidates(confirmed, next Triple) bool {
	return confirmed != next
}

// State is a snapshot of the cascade for the caller.
type State struct {
	Current   Triple   `json:"current"`
	Confirmed *Triple  `json:"confirmed,omitempty"`
	Models    []string `json:"models"`
	Model     string   `json:"model,omitempty"`
	FocusYear bool     `json:"focusYear,omitempty"`
}

// Cascade tracks one form's attribute selection. Methods are synchronous
// and must be called from a single goroutine; the session layer serializes
// access per user.
type Cascade struct {
	lookup Lookup
	log    *logrus.Entry

	current   Triple
	confirmed *Triple
	models    []string
	model     string
	focusYear bool
}

func New(lookup Lookup, log *logrus.Entry) *Cascade {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Cascade{lookup: lookup, log: log}
}

// InitForCreate resets the cascade for a new car: everything cleared, year
// defaulted to the earliest selectable year, focus on the year field.
func (c *Cascade) InitForCreate() {
	c.current = Triple{Year: MinYear}
	c.confirmed = nil
	c.models = nil
	c.model = ""
	c.focusYear = true
	c.log.Info("car form initialized for create")
}

// InitForEdit loads an existing car's triple and immediately fetches its
// model list; no explicit refresh is needed before editing.
func (c *Cascade) InitForEdit(ctx context.Context, cred session.Credential, t Triple, model string) {
	c.current = t
	c.model = model
	c.focusYear = true
	c.fetchModels(ctx, cred)
	c.log.WithFields(logrus.Fields{"year": t.Year, "make": t.Make, "type": t.Type}).
		Info("car form initialized for edit")
}

func (c *Cascade) SetYear(year int) {
	c.current.Year = year
	c.invalidateIfChanged()
}

func (c *Cascade) SetMake(carMake string) {
	c.current.Make = carMake
	c.invalidateIfChanged()
}

func (c *Cascade) SetType(carType string) {
	c.current.Type = carType
	c.invalidateIfChanged()
}

func (c *Cascade) invalidateIfChanged() {
	if c.confirmed != nil && invalidates(*c.confirmed, c.current) {
		c.models = nil
		c.model = ""
		c.log.Info("model list invalidated, upstream attribute changed")
	}
}

// Refresh fetches the model list for the current triple and confirms it.
// An incomplete triple is a validation failure and leaves state unchanged.
// A transport failure degrades to an empty model list.
func (c *Cascade) Refresh(ctx context.Context, cred session.Credential) error {
	if !c.current.complete() {
		return ErrIncompleteSelection
	}
	c.fetchModels(ctx, cred)
	return nil
}

func (c *Cascade) fetchModels(ctx context.Context, cred session.Credential) {
	models, err := c.lookup.ModelsFor(ctx, cred, c.current.Make, c.current.Type, c.current.Year)
	if err != nil {
		c.log.WithError(err).Error("model lookup failed")
		models = nil
	}
	c.models = models
	confirmed := c.current
	c.confirmed = &confirmed
	if c.model != "" && !contains(models, c.model) {
		c.model = ""
	}
	c.log.WithFields(logrus.Fields{
		"make": c.current.Make, "type": c.current.Type, "year": c.current.Year, "models": len(models),
	}).Info("model list set")
}

// SelectModel picks a model from the loaded list.
func (c *Cascade) SelectModel(model string) bool {
	if !contains(c.models, model) {
		return false
	}
	c.model = model
	return true
}

func (c *Cascade) State() State {
	s := State{
		Current:   c.current,
		Models:    c.models,
		Model:     c.model,
		FocusYear: c.focusYear,
	}
	if c.confirmed != nil {
		confirmed := *c.confirmed
		s.Confirmed = &confirmed
	}
	return s
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Years lists the selectable car years, earliest first.
func Years(now time.Time) []int {
	current := now.Year()
	out := make([]int, 0, current-MinYear+1)
	for y := MinYear; y <= current; y++ {
		out = append(out, y)
	}
	return out
}

// ValidYear reports whether a year is inside the selectable domain. The
// check belongs at the input boundary; the cascade itself assumes it.
func ValidYear(year int, now time.Time) bool {
	return year >= MinYear && year <= now.Year()
}

// CarTypes is the fixed set of body types offered by the form.
var CarTypes = []string{
	"SEDAN",
	"WAGON",
	"HATCHBACK",
	"CONVERTIBLE",
	"SUV",
	"MOTORCYCLE",
	"PICKUP",
	"VAN",
	"COUPE",
}

// EngineTypes is the fixed set of engine types offered by the form.
var EngineTypes = []string{
	"DIESEL",
	"PETROL",
	"PETROL_AND_GAS",
	"HYBRID",
	"ELECTRIC",
}
