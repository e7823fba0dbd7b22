package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"frontdesk/internal/cascade"
	"frontdesk/internal/lifecycle"
	"frontdesk/internal/repair"
	"frontdesk/internal/state"
	"frontdesk/pkg/garage"
	"frontdesk/pkg/session"
)

// forecastAdapter maps the backend weather DTO onto the flow's forecast.
type forecastAdapter struct {
	g *garage.Client
}

func (a forecastAdapter) Forecast(ctx context.Context, cred session.Credential, city string, date repair.Date) (lifecycle.Forecast, error) {
	dto, err := a.g.WeatherFor(ctx, cred, city, date)
	if err != nil {
		return lifecycle.Forecast{}, err
	}
	return lifecycle.Forecast{
		Summary:      dto.Symbol,
		MaxTemp:      dto.MaxTemp,
		MinTemp:      dto.MinTemp,
		MaxWindSpeed: dto.MaxWindSpeed,
	}, nil
}

// NewEntryFactory builds the per-user state constructor. Each new session
// entry gets its own flow and car-form cascade, both talking to the garage
// backend through the shared client.
func NewEntryFactory(g *garage.Client, log *logrus.Logger) func(username string) *state.Entry {
	return func(username string) *state.Entry {
		return &state.Entry{
			Flow: lifecycle.NewFlow(username, lifecycle.Deps{
				Records:   g,
				Bookings:  g,
				Times:     g,
				Forecasts: forecastAdapter{g},
				Now:       time.Now,
				Log:       log.WithField("username", username),
			}),
			Cascade: cascade.New(g, log.WithFields(logrus.Fields{
				"username":  username,
				"component": "car_form",
			})),
		}
	}
}
