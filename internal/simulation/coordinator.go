package simulation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vallois/aquawatt/internal/anomaly"
	"github.com/vallois/aquawatt/internal/store"
)

const defaultCycleInterval = 30 * time.Second

// RecordMirror receives a copy of every persisted batch, typically a
// time-series backend. Mirror failures are logged, never fatal.
type RecordMirror interface {
	WriteRecords(ctx context.Context, records []store.Record) error
}

// Coordinator drives the collect → persist → detect cycle: it polls every
// active sensor, appends the batch to the reading store, mirrors it when a
// mirror is configured, and runs anomaly detection over the stored set.
type Coordinator struct {
	manager  *Manager
	store    *store.Store
	detector *anomaly.Detector
	mirror   RecordMirror
	interval time.Duration

	mu        sync.Mutex
	enabled   bool
	lastCycle time.Time
	lastCount int
	lastFlags int
}

// CoordinatorOption customises coordinator behaviour.
type CoordinatorOption func(*Coordinator)

// WithCycleInterval overrides how often a full cycle runs.
func WithCycleInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMirror attaches a record mirror to every persisted batch.
func WithMirror(m RecordMirror) CoordinatorOption {
	return func(c *Coordinator) {
		c.mirror = m
	}
}

// NewCoordinator wires the manager, store, and detector into a cycle
// runner. It starts disabled.
func NewCoordinator(m *Manager, s *store.Store, d *anomaly.Detector, opts ...CoordinatorOption) *Coordinator {
	coord := &Coordinator{
		manager:  m,
		store:    s,
		detector: d,
		interval: defaultCycleInterval,
	}
	for _, opt := range opts {
		opt(coord)
	}
	return coord
}

// Start launches the background cycle loop until ctx cancels. Cycles only
// run while the coordinator is enabled.
func (c *Coordinator) Start(ctx context.Context) {
	log.Printf("collection coordinator running; interval=%s sensors=%d", c.interval, c.manager.Len())
	ticker := time.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("collection coordinator stopped")
				return
			case <-ticker.C:
				if !c.Enabled() {
					continue
				}
				if err := c.RunCycle(ctx); err != nil {
					log.Printf("collection cycle failed: %v", err)
				}
			}
		}
	}()
}

// RunCycle executes one full collection pass synchronously.
func (c *Coordinator) RunCycle(ctx context.Context) error {
	batch := c.manager.ReadAll()
	if len(batch.Skipped) > 0 {
		log.Printf("collection cycle skipped inactive sensors: %v", batch.Skipped)
	}

	records := make([]store.Record, 0, len(batch.Readings))
	for _, r := range batch.Readings {
		records = append(records, store.NewRecord(r.SensorID, r.Value, r.Timestamp, r.Unit, string(r.Equipment)))
	}
	if err := c.store.InsertBatch(records); err != nil {
		return err
	}

	if c.mirror != nil && len(records) > 0 {
		if err := c.mirror.WriteRecords(ctx, records); err != nil {
			log.Printf("record mirror write failed: %v", err)
		}
	}

	stored, err := c.store.All()
	if err != nil {
		return err
	}
	verdicts := c.detector.Detect(stored)
	flagged := 0
	for _, v := range verdicts {
		if v.Flagged {
			flagged++
		}
	}

	c.mu.Lock()
	c.lastCycle = time.Now()
	c.lastCount = len(records)
	c.lastFlags = flagged
	c.mu.Unlock()

	log.Printf("collection cycle complete; collected=%d stored=%d flagged=%d", len(records), len(stored), flagged)
	return nil
}

// Enable turns the periodic cycles on.
func (c *Coordinator) Enable() {
	c.mu.Lock()
	if c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = true
	c.mu.Unlock()
	log.Println("collection coordinator enabled")
}

// Disable pauses the periodic cycles.
func (c *Coordinator) Disable() {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = false
	c.mu.Unlock()
	log.Println("collection coordinator disabled")
}

// Enabled reports whether cycles are currently running.
func (c *Coordinator) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Status is a snapshot of the coordinator for the HTTP surface.
type Status struct {
	Enabled       bool      `json:"enabled"`
	Interval      string    `json:"interval"`
	Sensors       []Info    `json:"sensors"`
	LastCycle     time.Time `json:"last_cycle,omitempty"`
	LastCollected int       `json:"last_collected"`
	LastFlagged   int       `json:"last_flagged"`
}

// Status reports the current coordinator state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Enabled:       c.enabled,
		Interval:      c.interval.String(),
		Sensors:       c.manager.List(),
		LastCycle:     c.lastCycle,
		LastCollected: c.lastCount,
		LastFlagged:   c.lastFlags,
	}
}
