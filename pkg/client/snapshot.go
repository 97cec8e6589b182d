package client

import (
	"context"
	"encoding/json"
	"fmt"
	"weekchain/pkg/model"
)

type SnapshotClient struct {
	httpClient *HttpClient
}

func NewSnapshotClient(baseUrl string) *SnapshotClient {
	return &SnapshotClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *SnapshotClient) List(ctx context.Context, limit int, offset int64) ([]*model.CapacitySnapshot, *Metadata, error) {
	path := fmt.Sprintf("/api/v1/snapshots?limit=%d&offset=%d", limit, offset)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if err := resp.AsError(); err != nil {
		return nil, nil, err
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
		Metadata
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%s\n%w", resp.ToString(), err)
	}

	var snapshots []*model.CapacitySnapshot
	if err := json.Unmarshal(wrapper.Data, &snapshots); err != nil {
		return nil, nil, fmt.Errorf("could not decode snapshot list:\n%s\n%w", resp.ToString(), err)
	}
	meta := wrapper.Metadata
	return snapshots, &meta, nil
}
