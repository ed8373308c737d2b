package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrSensorInactive is returned when a reading is requested from a
// deactivated sensor. No reading is produced in that case.
var ErrSensorInactive = errors.New("sensor is inactive")

// DefaultUnit is the measurement unit attached to generated readings.
const DefaultUnit = "kW"

// Reading is one timestamped consumption measurement from one sensor.
type Reading struct {
	SensorID  string    `json:"sensor_id"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReading builds a reading stamped with the current time. The value is
// rounded to two decimals, matching the persisted precision.
func NewReading(sensorID string, value float64) Reading {
	return Reading{
		SensorID:  sensorID,
		Value:     roundValue(value),
		Unit:      DefaultUnit,
		Timestamp: time.Now(),
	}
}

func roundValue(v float64) float64 {
	return math.Round(v*100) / 100
}

// Sensor simulates one energy meter attached to a piece of equipment.
type Sensor struct {
	ID       string        `json:"sensor_id"`
	Type     EquipmentType `json:"type_equipement"`
	Location string        `json:"location"`
	Active   bool          `json:"active"`

	rng      *rand.Rand
	valueRng ConsumptionRange
}

// SensorOption customizes sensor creation.
type SensorOption func(*Sensor)

// WithRange overrides the consumption range the sensor draws from.
func WithRange(min, max float64) SensorOption {
	return func(s *Sensor) {
		if max >= min {
			s.valueRng = ConsumptionRange{Min: min, Max: max}
		}
	}
}

// WithSeed fixes the random source, for reproducible simulations.
func WithSeed(seed int64) SensorOption {
	return func(s *Sensor) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// NewSensor creates a sensor for a known equipment type. The sensor starts
// active and draws values from the type's default consumption range.
func NewSensor(id string, typ EquipmentType, location string, opts ...SensorOption) (*Sensor, error) {
	rng, ok := DefaultRanges()[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEquipment, typ)
	}
	s := &Sensor{
		ID:       id,
		Type:     typ,
		Location: location,
		Active:   true,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		valueRng: rng,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Range reports the consumption range the sensor draws from.
func (s *Sensor) Range() ConsumptionRange {
	return s.valueRng
}

// GenerateReading produces one plausible reading, uniform over the sensor's
// consumption range. An inactive sensor yields ErrSensorInactive rather
// than a zero value.
func (s *Sensor) GenerateReading() (Reading, error) {
	if !s.Active {
		return Reading{}, fmt.Errorf("sensor %s: %w", s.ID, ErrSensorInactive)
	}
	value := s.valueRng.Min + s.rng.Float64()*(s.valueRng.Max-s.valueRng.Min)
	return NewReading(s.ID, value), nil
}

// Info is the externally visible description of a sensor.
type Info struct {
	SensorID string        `json:"sensor_id"`
	Type     EquipmentType `json:"type_equipement"`
	Location string        `json:"location"`
	Active   bool          `json:"active"`
}

// Info describes the sensor without exposing its internals.
func (s *Sensor) Info() Info {
	return Info{
		SensorID: s.ID,
		Type:     s.Type,
		Location: s.Location,
		Active:   s.Active,
	}
}
