package client

import (
	"context"
	"weekchain/pkg/model"
)

type MatcherClient struct {
	httpClient *HttpClient
}

func NewMatcherClient(baseUrl string) *MatcherClient {
	return &MatcherClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *MatcherClient) FindBest(ctx context.Context, req *model.MatchRequest) (*model.MatchResponse, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/matches/best", req)
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out model.MatchResponse
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MatcherClient) FindAlternatives(ctx context.Context, req *model.AlternativesRequest) (*model.AlternativesResponse, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/matches/alternatives", req)
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out model.AlternativesResponse
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
