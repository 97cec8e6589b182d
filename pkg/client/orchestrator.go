package client

import (
	"context"
)

type OrchestratorClient struct {
	httpClient *HttpClient
}

func NewOrchestratorClient(baseUrl string) *OrchestratorClient {
	return &OrchestratorClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// Execute runs a named flow and returns its output map.
func (c *OrchestratorClient) Execute(ctx context.Context, flow string, input map[string]any) (map[string]any, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/orchestrator/execute", map[string]any{
		"flow":  flow,
		"input": input,
	})
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out struct {
		Flow   string         `json:"flow"`
		Output map[string]any `json:"output"`
	}
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return out.Output, nil
}

func (c *OrchestratorClient) Flows(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/orchestrator/flows")
	if err != nil {
		return nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	var out struct {
		Flows []string `json:"flows"`
	}
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return out.Flows, nil
}
