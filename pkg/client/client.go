package client

import (
	"weekchain/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client bundles the outbound connections a service holds: databases and peer services.
type Client struct {
	Mongo    *MongoClient
	Postgres *pgxpool.Pool

	Matcher      *MatcherClient
	Capacity     *CapacityClient
	Reservations *ReservationClient
	Snapshots    *SnapshotClient
	Orchestrator *OrchestratorClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMatcherClient(baseURL string) {
	c.Matcher = NewMatcherClient(baseURL)
}

func (c *Client) SetCapacityClient(baseURL string) {
	c.Capacity = NewCapacityClient(baseURL)
}

func (c *Client) SetReservationClient(baseURL string) {
	c.Reservations = NewReservationClient(baseURL)
}

func (c *Client) SetSnapshotClient(baseURL string) {
	c.Snapshots = NewSnapshotClient(baseURL)
}

func (c *Client) SetOrchestratorClient(baseURL string) {
	c.Orchestrator = NewOrchestratorClient(baseURL)
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		c.Mongo.Disconnect(log)
	}
	if c.Postgres != nil {
		c.Postgres.Close()
		log.Info("Postgres pool closed")
	}
}
