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

type makeDTO struct {
	MakeName string `json:"makeName"`
}

type modelDTO struct {
	ModelName string `json:"modelName"`
}

// CarsFor lists the cars registered to a user.
func (c *Client) CarsFor(ctx context.Context, cred session.Credential, username string) ([]repair.Car, error) {
	q := url.Values{"username": {username}}
	var cars []repair.Car
	if _, err := c.doJSON(ctx, cred, http.MethodGet, withQuery(c.Endpoints.CarAPIEndpoint, q), nil, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

func (c *Client) SaveCar(ctx context.Context, cred session.Credential, car repair.Car, username string) error {
	q := url.Values{"username": {username}}
	_, err := c.doJSON(ctx, cred, http.MethodPost, withQuery(c.Endpoints.CarAPIEndpoint, q), car, nil)
	return err
}

func (c *Client) UpdateCar(ctx context.Context, cred session.Credential, car repair.Car) error {
	_, err := c.doJSON(ctx, cred, http.MethodPut, c.Endpoints.CarAPIEndpoint, car, nil)
	return err
}

func (c *Client) DeleteCar(ctx context.Context, cred session.Credential, carID int64) error {
	u := fmt.Sprintf("%s/%d", c.Endpoints.CarAPIEndpoint, carID)
	_, err := c.doJSON(ctx, cred, http.MethodDelete, u, nil, nil)
	return err
}

// Makes lists every car make the backend knows about.
func (c *Client) Makes(ctx context.Context, cred session.Credential) ([]string, error) {
	var dtos []makeDTO
	if _, err := c.doJSON(ctx, cred, http.MethodGet, c.Endpoints.CarAPIEndpoint+"/makes", nil, &dtos); err != nil {
		return nil, err
	}
	makes := make([]string, 0, len(dtos))
	for _, d := range dtos {
		makes = append(makes, d.MakeName)
	}
	return makes, nil
}

// ModelsFor lists the model names matching a make, body type and production year.
func (c *Client) ModelsFor(ctx context.Context, cred session.Credential, carMake, carType string, year int) ([]string, error) {
	q := url.Values{
		"make": {carMake},
		"type": {carType},
		"year": {strconv.Itoa(year)},
	}
	var dtos []modelDTO
	if _, err := c.doJSON(ctx, cred, http.MethodGet, withQuery(c.Endpoints.CarAPIEndpoint+"/models", q), nil, &dtos); err != nil {
		return nil, err
	}
	models := make([]string, 0, len(dtos))
	for _, d := range dtos {
		models = append(models, d.ModelName)
	}
	return models, nil
}
