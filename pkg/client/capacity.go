package client

import (
	"context"
	"net/url"
	"weekchain/pkg/model"
)

type CapacityClient struct {
	httpClient *HttpClient
}

func NewCapacityClient(baseUrl string) *CapacityClient {
	return &CapacityClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func tierPath(tier model.Tier) string {
	return "/api/v1/capacity/tiers/" + url.PathEscape(string(tier))
}

func (c *CapacityClient) Status(ctx context.Context) (*model.GlobalCapacityStatus, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/capacity/status")
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out model.GlobalCapacityStatus
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CanSell returns the gate decision. A 503 still carries a decision body with allowed=false,
// so the decision is decoded before the status is turned into an error.
func (c *CapacityClient) CanSell(ctx context.Context, tier model.Tier) (*model.AdmissionDecision, error) {
	resp, err := c.httpClient.GET(ctx, tierPath(tier)+"/can-sell")
	if err != nil {
		return nil, err
	}
	var out model.AdmissionDecision
	if decodeErr := resp.DecodeData(&out); decodeErr == nil {
		return &out, resp.AsError()
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	return nil, resp.DecodeData(&out)
}

func (c *CapacityClient) CommitSale(ctx context.Context, tier model.Tier) (*model.GlobalCapacityStatus, error) {
	resp, err := c.httpClient.POST(ctx, tierPath(tier)+"/sales", map[string]any{})
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out model.GlobalCapacityStatus
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CapacityClient) ReleaseSale(ctx context.Context, tier model.Tier) (*model.GlobalCapacityStatus, error) {
	resp, err := c.httpClient.DELETE(ctx, tierPath(tier)+"/sales")
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out model.GlobalCapacityStatus
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CapacityClient) SetSalesEnabled(ctx context.Context, tier model.Tier, toggle *model.SalesToggle) (*model.GlobalCapacityStatus, error) {
	resp, err := c.httpClient.PATCH(ctx, tierPath(tier), toggle)
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out model.GlobalCapacityStatus
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
