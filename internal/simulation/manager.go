package simulation

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateSensor is returned when registering an ID already in use.
	ErrDuplicateSensor = errors.New("sensor id already registered")
	// ErrSensorNotFound is returned when looking up an unknown sensor.
	ErrSensorNotFound = errors.New("sensor not found")
)

// CollectedReading pairs a reading with the equipment type of the sensor
// that produced it, ready for persistence.
type CollectedReading struct {
	Reading
	Equipment EquipmentType `json:"type_equipement"`
}

// BatchResult reports the per-item outcome of one collection pass.
// Inactive sensors are skipped, never fatal to the batch.
type BatchResult struct {
	Readings []CollectedReading `json:"readings"`
	Skipped  []string           `json:"skipped,omitempty"`
}

// Manager owns the sensor fleet of the treatment unit and keeps an
// in-process history of every reading it collected.
type Manager struct {
	mu      sync.RWMutex
	sensors map[string]*Sensor
	order   []string
	history []CollectedReading
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{sensors: make(map[string]*Sensor)}
}

// Add registers a sensor. IDs are unique across the fleet.
func (m *Manager) Add(s *Sensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sensors[s.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSensor, s.ID)
	}
	m.sensors[s.ID] = s
	m.order = append(m.order, s.ID)
	return nil
}

// Remove deregisters a sensor.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sensors[id]; !exists {
		return fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}
	delete(m.sensors, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetActive toggles a sensor's active flag.
func (m *Manager) SetActive(id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, exists := m.sensors[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}
	s.Active = active
	return nil
}

// ReadOne collects a single reading from the named sensor and appends it
// to the history. Inactive sensors surface ErrSensorInactive.
func (m *Manager) ReadOne(id string) (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, exists := m.sensors[id]
	if !exists {
		return Reading{}, fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}
	reading, err := s.GenerateReading()
	if err != nil {
		return Reading{}, err
	}
	m.history = append(m.history, CollectedReading{Reading: reading, Equipment: s.Type})
	return reading, nil
}

// ReadAll collects one reading from every active sensor in registration
// order. Inactive sensors are recorded as skipped; successful readings are
// appended to the history.
func (m *Manager) ReadAll() BatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := BatchResult{Readings: make([]CollectedReading, 0, len(m.order))}
	for _, id := range m.order {
		s := m.sensors[id]
		reading, err := s.GenerateReading()
		if err != nil {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		collected := CollectedReading{Reading: reading, Equipment: s.Type}
		result.Readings = append(result.Readings, collected)
		m.history = append(m.history, collected)
	}
	return result
}

// History returns the accumulated readings in chronological append order.
func (m *Manager) History() []CollectedReading {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CollectedReading, len(m.history))
	copy(out, m.history)
	return out
}

// ResetHistory clears the in-process reading history.
func (m *Manager) ResetHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
}

// Describe returns the visible description of one sensor.
func (m *Manager) Describe(id string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sensors[id]
	if !exists {
		return Info{}, fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}
	return s.Info(), nil
}

// List describes every registered sensor in registration order.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.order))
	for _, id := range m.order {
		infos = append(infos, m.sensors[id].Info())
	}
	return infos
}

// Len reports the number of registered sensors.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sensors)
}

// ReadingCount reports the number of readings collected so far.
func (m *Manager) ReadingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history)
}
