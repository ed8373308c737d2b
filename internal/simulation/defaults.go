package simulation

// DefaultSensors returns the sensor fleet of the water-treatment unit.
func DefaultSensors() []*Sensor {
	specs := []struct {
		id       string
		typ      EquipmentType
		location string
	}{
		{"CAP_POMPE_01", EquipmentPump, "Bassin de réception"},
		{"CAP_POMPE_02", EquipmentPump, "Bassin de traitement"},
		{"CAP_COMPRESSEUR_01", EquipmentCompressor, "Station aération"},
		{"CAP_ECLAIRAGE_01", EquipmentLighting, "Salle de contrôle"},
		{"CAP_VENTILATION_01", EquipmentVentilation, "Zone de traitement"},
	}

	sensors := make([]*Sensor, 0, len(specs))
	for _, spec := range specs {
		s, err := NewSensor(spec.id, spec.typ, spec.location)
		if err != nil {
			// Unreachable for the constant types above.
			panic(err)
		}
		sensors = append(sensors, s)
	}
	return sensors
}
