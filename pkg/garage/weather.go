package garage

import (
	"context"
	"net/http"
	"net/url"

	"frontdesk/internal/repair"
	"frontdesk/pkg/session"
)

// ForecastDTO is the backend's weather forecast for a city and date.
type ForecastDTO struct {
	Symbol       string  `json:"symbol"`
	MaxTemp      float64 `json:"maxTemp"`
	MinTemp      float64 `json:"minTemp"`
	MaxWindSpeed float64 `json:"maxWindSpeed"`
}

func (c *Client) WeatherFor(ctx context.Context, cred session.Credential, city string, date repair.Date) (ForecastDTO, error) {
	q := url.Values{
		"city": {city},
		"date": {date.String()},
	}
	var f ForecastDTO
	if _, err := c.doJSON(ctx, cred, http.MethodGet, withQuery(c.Endpoints.WeatherAPIEndpoint, q), nil, &f); err != nil {
		return ForecastDTO{}, err
	}
	return f, nil
}
