package simulation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vallois/aquawatt/internal/simulation"
)

func newTestManager(t *testing.T) *simulation.Manager {
	t.Helper()
	m := simulation.NewManager()
	for _, sensor := range simulation.DefaultSensors() {
		require.NoError(t, m.Add(sensor))
	}
	return m
}

func TestAddDuplicateSensor(t *testing.T) {
	m := newTestManager(t)

	dup, err := simulation.NewSensor("CAP_POMPE_01", simulation.EquipmentPump, "Ailleurs")
	require.NoError(t, err)
	err = m.Add(dup)
	require.True(t, errors.Is(err, simulation.ErrDuplicateSensor))
	require.Equal(t, 5, m.Len())
}

func TestRemoveSensor(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Remove("CAP_POMPE_01"))
	require.Equal(t, 4, m.Len())

	err := m.Remove("CAP_POMPE_01")
	require.True(t, errors.Is(err, simulation.ErrSensorNotFound))
}

func TestReadOneAppendsHistory(t *testing.T) {
	m := newTestManager(t)

	reading, err := m.ReadOne("CAP_COMPRESSEUR_01")
	require.NoError(t, err)
	require.Equal(t, "CAP_COMPRESSEUR_01", reading.SensorID)
	require.Equal(t, 1, m.ReadingCount())

	history := m.History()
	require.Len(t, history, 1)
	require.Equal(t, simulation.EquipmentCompressor, history[0].Equipment)
}

func TestReadOneUnknownSensor(t *testing.T) {
	m := newTestManager(t)
	_, err := m.ReadOne("CAP_INCONNU")
	require.True(t, errors.Is(err, simulation.ErrSensorNotFound))
	require.Equal(t, 0, m.ReadingCount())
}

func TestReadAllSkipsInactiveSensors(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SetActive("CAP_POMPE_02", false))
	require.NoError(t, m.SetActive("CAP_ECLAIRAGE_01", false))

	batch := m.ReadAll()
	require.Len(t, batch.Readings, 3)
	require.Equal(t, []string{"CAP_POMPE_02", "CAP_ECLAIRAGE_01"}, batch.Skipped)
	require.Equal(t, 3, m.ReadingCount())
}

func TestReadAllPreservesRegistrationOrder(t *testing.T) {
	m := newTestManager(t)

	batch := m.ReadAll()
	require.Len(t, batch.Readings, 5)

	ids := make([]string, 0, len(batch.Readings))
	for _, r := range batch.Readings {
		ids = append(ids, r.SensorID)
	}
	require.Equal(t, []string{
		"CAP_POMPE_01",
		"CAP_POMPE_02",
		"CAP_COMPRESSEUR_01",
		"CAP_ECLAIRAGE_01",
		"CAP_VENTILATION_01",
	}, ids)
}

func TestSetActiveUnknownSensor(t *testing.T) {
	m := newTestManager(t)
	err := m.SetActive("CAP_INCONNU", false)
	require.True(t, errors.Is(err, simulation.ErrSensorNotFound))
}

func TestResetHistory(t *testing.T) {
	m := newTestManager(t)
	m.ReadAll()
	require.NotZero(t, m.ReadingCount())

	m.ResetHistory()
	require.Equal(t, 0, m.ReadingCount())
	require.Empty(t, m.History())
}

func TestDescribeAndList(t *testing.T) {
	m := newTestManager(t)

	info, err := m.Describe("CAP_VENTILATION_01")
	require.NoError(t, err)
	require.Equal(t, simulation.EquipmentVentilation, info.Type)
	require.True(t, info.Active)

	infos := m.List()
	require.Len(t, infos, 5)
	require.Equal(t, "CAP_POMPE_01", infos[0].SensorID)
}
