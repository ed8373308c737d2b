// Package influxdb mirrors persisted readings into an InfluxDB bucket so
// dashboards can chart them. The mirror is optional; the JSON document
// remains the source of truth.
package influxdb

import (
	"context"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	api "github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/vallois/aquawatt/internal/store"
)

const measurementName = "energy_readings"

// Config maps the connection details required to reach InfluxDB.
type Config struct {
	URL     string
	Token   string
	Org     string
	Bucket  string
	Timeout time.Duration
}

// Configured reports whether the environment opts into the mirror at all.
func Configured() bool {
	return os.Getenv("INFLUX_URL") != ""
}

// FromEnv loads configuration values from environment variables.
// INFLUX_URL, INFLUX_TOKEN, INFLUX_ORG, and INFLUX_BUCKET are required.
// INFLUX_TIMEOUT is optional and defaults to 5s when not provided.
func FromEnv() (Config, error) {
	cfg := Config{
		URL:    os.Getenv("INFLUX_URL"),
		Token:  os.Getenv("INFLUX_TOKEN"),
		Org:    os.Getenv("INFLUX_ORG"),
		Bucket: os.Getenv("INFLUX_BUCKET"),
	}

	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return Config{}, fmt.Errorf("missing InfluxDB configuration, ensure INFLUX_URL, INFLUX_TOKEN, INFLUX_ORG, and INFLUX_BUCKET are set")
	}

	timeout := os.Getenv("INFLUX_TIMEOUT")
	switch {
	case timeout == "":
		cfg.Timeout = 5 * time.Second
	default:
		dur, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid INFLUX_TIMEOUT: %w", err)
		}
		cfg.Timeout = dur
	}

	return cfg, nil
}

// Client wraps the InfluxDB client with project-specific defaults.
type Client struct {
	cfg    Config
	client influxdb2.Client
}

// New establishes a new InfluxDB client based on the provided
// configuration. A ping is issued to ensure the connection is healthy
// before returning.
func New(ctx context.Context, cfg Config) (*Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctxPing := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctxPing, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ok, err := client.Ping(ctxPing)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping InfluxDB: %w", err)
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("influxdb ping failed")
	}

	return &Client{cfg: cfg, client: client}, nil
}

func (c *Client) writeAPI() api.WriteAPIBlocking {
	return c.client.WriteAPIBlocking(c.cfg.Org, c.cfg.Bucket)
}

// WriteRecords mirrors a batch of persisted records as points, tagged by
// sensor and equipment type. Records with unparseable timestamps are
// stamped at write time.
func (c *Client) WriteRecords(ctx context.Context, records []store.Record) error {
	writer := c.writeAPI()
	for _, rec := range records {
		ts, err := rec.Time()
		if err != nil || ts.IsZero() {
			ts = time.Now()
		}
		point := influxdb2.NewPoint(
			measurementName,
			map[string]string{
				"sensor_id":       rec.SensorID,
				"type_equipement": rec.Equipment,
			},
			map[string]interface{}{
				"value": rec.Value,
				"unit":  rec.Unit,
			},
			ts,
		)
		if err := writer.WritePoint(ctx, point); err != nil {
			return fmt.Errorf("write point for %s: %w", rec.SensorID, err)
		}
	}
	return nil
}

// Ping checks the InfluxDB availability using the wrapped client.
func (c *Client) Ping(ctx context.Context) error {
	ok, err := c.client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("influxdb ping failed")
	}
	return nil
}

// Close releases resources held by the underlying client.
func (c *Client) Close() {
	c.client.Close()
}
