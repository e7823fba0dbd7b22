package garage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"frontdesk/internal/repair"
	"frontdesk/pkg/session"
)

// AvailableRepair is a service a garage offers, before it is booked for a car.
type AvailableRepair struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Cost              decimal.Decimal `json:"cost"`
	RepairTimeMinutes int             `json:"repairTimeInMinutes"`
}

// RepairRecords lists every repair booked by a user, past and future.
func (c *Client) RepairRecords(ctx context.Context, cred session.Credential, username string) ([]repair.Record, error) {
	q := url.Values{"username": {username}}
	var records []repair.Record
	if _, err := c.doJSON(ctx, cred, http.MethodGet, withQuery(c.Endpoints.CarRepairAPIEndpoint, q), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CancelRepair deletes a booked repair and frees its booking slot.
func (c *Client) CancelRepair(ctx context.Context, cred session.Credential, repairID int64) error {
	u := fmt.Sprintf("%s/%d", c.Endpoints.CarRepairAPIEndpoint, repairID)
	_, err := c.doJSON(ctx, cred, http.MethodDelete, u, nil, nil)
	return err
}

// AvailableRepairs lists the services a garage offers.
func (c *Client) AvailableRepairs(ctx context.Context, cred session.Credential, garageID int64) ([]AvailableRepair, error) {
	u := fmt.Sprintf("%s/%d", c.Endpoints.AvailableRepairAPIEndpoint, garageID)
	var repairs []AvailableRepair
	if _, err := c.doJSON(ctx, cred, http.MethodGet, u, nil, &repairs); err != nil {
		return nil, err
	}
	return repairs, nil
}

// AddRepairs books the selected services for a car.
func (c *Client) AddRepairs(ctx context.Context, cred session.Credential, repairIDs []int64, carID int64) error {
	u := fmt.Sprintf("%s/selected-services/%d", c.Endpoints.CarRepairAPIEndpoint, carID)
	_, err := c.doJSON(ctx, cred, http.MethodPost, u, repairIDs, nil)
	return err
}
