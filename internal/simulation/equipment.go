package simulation

import (
	"errors"
	"fmt"
)

// EquipmentType identifies one of the monitored equipment families.
// The values are the wire names used in the persisted documents.
type EquipmentType string

const (
	EquipmentPump        EquipmentType = "pompe"
	EquipmentCompressor  EquipmentType = "compresseur"
	EquipmentLighting    EquipmentType = "eclairage"
	EquipmentVentilation EquipmentType = "ventilation"
)

// ErrUnknownEquipment is returned when a sensor is created with a type
// outside the known equipment families.
var ErrUnknownEquipment = errors.New("unknown equipment type")

// ConsumptionRange bounds the plausible consumption for an equipment
// family, in kW. Generated readings fall inside it, bounds included.
type ConsumptionRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRanges returns the consumption ranges observed for each equipment
// family in the water-treatment unit.
func DefaultRanges() map[EquipmentType]ConsumptionRange {
	return map[EquipmentType]ConsumptionRange{
		EquipmentPump:        {Min: 0.5, Max: 3.0},
		EquipmentCompressor:  {Min: 2.0, Max: 7.5},
		EquipmentLighting:    {Min: 0.2, Max: 1.5},
		EquipmentVentilation: {Min: 0.3, Max: 2.0},
	}
}

// ParseEquipmentType validates a raw equipment name.
func ParseEquipmentType(raw string) (EquipmentType, error) {
	typ := EquipmentType(raw)
	if _, ok := DefaultRanges()[typ]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEquipment, raw)
	}
	return typ, nil
}

// EquipmentTypes lists the known families in a stable order.
func EquipmentTypes() []EquipmentType {
	return []EquipmentType{
		EquipmentPump,
		EquipmentCompressor,
		EquipmentLighting,
		EquipmentVentilation,
	}
}
