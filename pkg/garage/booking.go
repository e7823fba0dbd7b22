package garage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"frontdesk/internal/repair"
	"frontdesk/pkg/session"
)

// AvailableStartTimes lists the free start times at a garage on a given date,
// for a repair of the given total duration.
func (c *Client) AvailableStartTimes(ctx context.Context, cred session.Credential, date repair.Date, durationMinutes int, garageID int64) ([]repair.Clock, error) {
	q := url.Values{
		"date":            {date.String()},
		"repair-duration": {strconv.Itoa(durationMinutes)},
		"garage-id":       {strconv.FormatInt(garageID, 10)},
	}
	var times []repair.Clock
	if _, err := c.doJSON(ctx, cred, http.MethodGet, withQuery(c.Endpoints.BookingAPIEndpoint+"/available-times", q), nil, &times); err != nil {
		return nil, err
	}
	return times, nil
}

// RescheduleBooking moves a booking to a new date and start time.
func (c *Client) RescheduleBooking(ctx context.Context, cred session.Credential, bookingID int64, date repair.Date, start repair.Clock) error {
	q := url.Values{
		"date":       {date.String()},
		"start-hour": {start.String()},
	}
	u := fmt.Sprintf("%s/%d", c.Endpoints.BookingAPIEndpoint, bookingID)
	_, err := c.doJSON(ctx, cred, http.MethodPut, withQuery(u, q), nil, nil)
	return err
}
