// Package catalog persists the sensor fleet definition in MySQL so the
// unit's sensors survive restarts and can be managed centrally.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vallois/aquawatt/internal/simulation"
)

// ErrSensorIDRequired is returned when an upsert lacks a sensor ID.
var ErrSensorIDRequired = errors.New("sensor id is required")

// Repository persists sensor definitions in MySQL.
type Repository struct {
	db *sql.DB
}

// SensorRow is one catalog entry.
type SensorRow struct {
	ID        int64     `json:"id"`
	SensorID  string    `json:"sensor_id"`
	Equipment string    `json:"type_equipement"`
	Location  string    `json:"location"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertInput describes a sensor to insert or update.
type UpsertInput struct {
	SensorID  string
	Equipment string
	Location  string
	Active    bool
}

// NewRepository constructs a Repository with the provided sql.DB pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the sensors table if it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS sensors (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		sensor_id VARCHAR(255) NOT NULL UNIQUE,
		type_equipement VARCHAR(64) NOT NULL,
		location VARCHAR(255) NULL,
		active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// UpsertSensor inserts a sensor definition or updates an existing one.
func (r *Repository) UpsertSensor(ctx context.Context, input UpsertInput) error {
	sensorID := strings.TrimSpace(input.SensorID)
	if sensorID == "" {
		return ErrSensorIDRequired
	}
	if _, err := simulation.ParseEquipmentType(input.Equipment); err != nil {
		return err
	}

	const query = `INSERT INTO sensors (sensor_id, type_equipement, location, active)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE type_equipement = VALUES(type_equipement),
			location = VALUES(location), active = VALUES(active)`
	if _, err := r.db.ExecContext(ctx, query, sensorID, input.Equipment, input.Location, input.Active); err != nil {
		return fmt.Errorf("upsert sensor %s: %w", sensorID, err)
	}
	return nil
}

// ListSensors returns every catalog entry in creation order.
func (r *Repository) ListSensors(ctx context.Context) ([]SensorRow, error) {
	const query = `SELECT id, sensor_id, type_equipement, location, active, created_at
		FROM sensors ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}
	defer rows.Close()

	var sensors []SensorRow
	for rows.Next() {
		var row SensorRow
		var location sql.NullString
		if err := rows.Scan(&row.ID, &row.SensorID, &row.Equipment, &location, &row.Active, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sensor row: %w", err)
		}
		row.Location = location.String
		sensors = append(sensors, row)
	}
	return sensors, rows.Err()
}

// SetActive updates the active flag of one catalog entry.
func (r *Repository) SetActive(ctx context.Context, sensorID string, active bool) error {
	const query = `UPDATE sensors SET active = ? WHERE sensor_id = ?`
	res, err := r.db.ExecContext(ctx, query, active, sensorID)
	if err != nil {
		return fmt.Errorf("set sensor %s active: %w", sensorID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes one catalog entry.
func (r *Repository) Delete(ctx context.Context, sensorID string) error {
	const query = `DELETE FROM sensors WHERE sensor_id = ?`
	if _, err := r.db.ExecContext(ctx, query, sensorID); err != nil {
		return fmt.Errorf("delete sensor %s: %w", sensorID, err)
	}
	return nil
}

// Seed loads the catalog into the manager, skipping rows with unknown
// equipment types. It returns the number of sensors registered.
func (r *Repository) Seed(ctx context.Context, m *simulation.Manager) (int, error) {
	rows, err := r.ListSensors(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, row := range rows {
		typ, err := simulation.ParseEquipmentType(row.Equipment)
		if err != nil {
			log.Printf("catalog seed: skipping %s: %v", row.SensorID, err)
			continue
		}
		sensor, err := simulation.NewSensor(row.SensorID, typ, row.Location)
		if err != nil {
			log.Printf("catalog seed: skipping %s: %v", row.SensorID, err)
			continue
		}
		sensor.Active = row.Active
		if err := m.Add(sensor); err != nil {
			log.Printf("catalog seed: skipping %s: %v", row.SensorID, err)
			continue
		}
		added++
	}
	return added, nil
}
