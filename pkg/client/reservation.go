package client

import (
	"context"
	"net/url"
	"weekchain/pkg/model"
)

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ReservationClient) Commit(ctx context.Context, commit *model.ReservationCommit) (*model.Reservation, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/reservations", commit)
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var reservation model.Reservation
	if err := resp.DecodeData(&reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *ReservationClient) Cancel(ctx context.Context, id string) error {
	resp, err := c.httpClient.DELETE(ctx, "/api/v1/reservations/id/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return resp.AsError()
}

func (c *ReservationClient) ListByUnit(ctx context.Context, unitID string) ([]*model.Reservation, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/reservations/unit/"+url.PathEscape(unitID))
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var reservations []*model.Reservation
	if err := resp.DecodeData(&reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}
