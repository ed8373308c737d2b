package simulation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vallois/aquawatt/internal/simulation"
)

func TestNewSensorRejectsUnknownType(t *testing.T) {
	_, err := simulation.NewSensor("CAP_X", simulation.EquipmentType("chaudiere"), "Atelier")
	require.Error(t, err)
	require.True(t, errors.Is(err, simulation.ErrUnknownEquipment))
}

func TestParseEquipmentType(t *testing.T) {
	typ, err := simulation.ParseEquipmentType("pompe")
	require.NoError(t, err)
	require.Equal(t, simulation.EquipmentPump, typ)

	_, err = simulation.ParseEquipmentType("turbine")
	require.True(t, errors.Is(err, simulation.ErrUnknownEquipment))
}

func TestGenerateReadingStaysInRange(t *testing.T) {
	for typ, rng := range simulation.DefaultRanges() {
		sensor, err := simulation.NewSensor("CAP_"+string(typ), typ, "Zone test", simulation.WithSeed(42))
		require.NoError(t, err)

		for i := 0; i < 200; i++ {
			reading, err := sensor.GenerateReading()
			require.NoError(t, err)
			require.GreaterOrEqual(t, reading.Value, rng.Min, "type %s", typ)
			require.LessOrEqual(t, reading.Value, rng.Max, "type %s", typ)
			require.Equal(t, "kW", reading.Unit)
			require.Equal(t, sensor.ID, reading.SensorID)
		}
	}
}

func TestGenerateReadingSetsTimestamp(t *testing.T) {
	sensor, err := simulation.NewSensor("CAP_POMPE_01", simulation.EquipmentPump, "Bassin")
	require.NoError(t, err)

	before := time.Now()
	reading, err := sensor.GenerateReading()
	require.NoError(t, err)
	require.False(t, reading.Timestamp.Before(before))
	require.False(t, reading.Timestamp.After(time.Now()))
}

func TestGenerateReadingInactiveSensor(t *testing.T) {
	sensor, err := simulation.NewSensor("CAP_POMPE_01", simulation.EquipmentPump, "Bassin")
	require.NoError(t, err)
	sensor.Active = false

	_, err = sensor.GenerateReading()
	require.Error(t, err)
	require.True(t, errors.Is(err, simulation.ErrSensorInactive))
}

func TestWithRangeOverride(t *testing.T) {
	sensor, err := simulation.NewSensor("CAP_POMPE_01", simulation.EquipmentPump, "Bassin",
		simulation.WithRange(10, 11), simulation.WithSeed(1))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		reading, err := sensor.GenerateReading()
		require.NoError(t, err)
		require.GreaterOrEqual(t, reading.Value, 10.0)
		require.LessOrEqual(t, reading.Value, 11.0)
	}
}
