package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	"github.com/pral10/SmartIoT/internal/domain/repository"
	pkgch "github.com/pral10/SmartIoT/pkg/clickhouse"
)

// ClickHouseReadingStore implements ReadingStore on ClickHouse.
type ClickHouseReadingStore struct {
	client   *pkgch.Client
	db       *sql.DB
	database string
}

// NewClickHouseReadingStore creates ClickHouse-backed storage.
func NewClickHouseReadingStore(client *pkgch.Client, database string) repository.ReadingStore {
	return &ClickHouseReadingStore{client: client, db: client.DB(), database: database}
}

func (s *ClickHouseReadingStore) readingsTable() string { return s.database + ".sensor_readings" }
func (s *ClickHouseReadingStore) alertsTable() string   { return s.database + ".sensor_alerts" }

func (s *ClickHouseReadingStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + s.database,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			device_id String,
			device_name String,
			ts DateTime64(3, 'UTC'),
			temperature Float64,
			humidity Float64,
			motion UInt8,
			predicted_temp Nullable(Float64)
		) ENGINE=MergeTree ORDER BY (device_id, ts)`, s.readingsTable()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			device_id String,
			type String,
			severity String,
			category String,
			message String,
			ts DateTime64(3, 'UTC')
		) ENGINE=MergeTree ORDER BY (device_id, ts)`, s.alertsTable()),
	})
}

func (s *ClickHouseReadingStore) Store(ctx context.Context, r *models.Reading) error {
	q := fmt.Sprintf("INSERT INTO %s (device_id, device_name, ts, temperature, humidity, motion, predicted_temp) VALUES (?, ?, ?, ?, ?, ?, ?)", s.readingsTable())
	_, err := s.db.ExecContext(ctx, q,
		r.DeviceID,
		r.DeviceName,
		r.Timestamp.UTC(),
		r.Temperature,
		r.Humidity,
		uint8(r.Motion),
		predictedArg(r),
	)
	return err
}

func (s *ClickHouseReadingStore) StoreBatch(ctx context.Context, readings []*models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(readings); start += chunkSize {
		end := start + chunkSize
		if end > len(readings) {
			end = len(readings)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, r := range readings[start:end] {
			if r == nil || r.DeviceID == "" || r.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.DeviceID,
				r.DeviceName,
				r.Timestamp.UTC(),
				r.Temperature,
				r.Humidity,
				uint8(r.Motion),
				predictedArg(r),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (device_id, device_name, ts, temperature, humidity, motion, predicted_temp) VALUES %s",
			s.readingsTable(), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseReadingStore) Latest(ctx context.Context, deviceID string, n int) ([]models.Reading, error) {
	q := fmt.Sprintf("SELECT device_id, device_name, ts, temperature, humidity, motion, predicted_temp FROM %s WHERE device_id = ? ORDER BY ts DESC LIMIT ?", s.readingsTable())
	rows, err := s.db.QueryContext(ctx, q, deviceID, n)
	if err != nil {
		return nil, err
	}
	readings, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}
	reverse(readings)
	return readings, nil
}

func (s *ClickHouseReadingStore) Query(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.Reading, error) {
	q := fmt.Sprintf("SELECT device_id, device_name, ts, temperature, humidity, motion, predicted_temp FROM %s WHERE device_id = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.readingsTable())
	rows, err := s.db.QueryContext(ctx, q, deviceID, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, err
	}
	return scanReadings(rows)
}

func (s *ClickHouseReadingStore) StoreAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	values := make([]string, 0, len(alerts))
	args := make([]interface{}, 0, len(alerts)*6)
	for _, a := range alerts {
		values = append(values, "(?, ?, ?, ?, ?, ?)")
		args = append(args, a.DeviceID, a.Type, a.Severity, a.Category, a.Message, a.Timestamp.UTC())
	}
	q := fmt.Sprintf("INSERT INTO %s (device_id, type, severity, category, message, ts) VALUES %s",
		s.alertsTable(), strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseReadingStore) QueryAlerts(ctx context.Context, deviceID string, n int) ([]models.Alert, error) {
	q := fmt.Sprintf("SELECT device_id, type, severity, category, message, ts FROM %s WHERE device_id = ? ORDER BY ts DESC LIMIT ?", s.alertsTable())
	rows, err := s.db.QueryContext(ctx, q, deviceID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var ts time.Time
		if err := rows.Scan(&a.DeviceID, &a.Type, &a.Severity, &a.Category, &a.Message, &ts); err != nil {
			return nil, err
		}
		a.Timestamp = ts.UTC()
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *ClickHouseReadingStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseReadingStore) Close() error {
	return nil // connection pool managed by pkg client
}

func predictedArg(r *models.Reading) interface{} {
	if r.PredictedTemp == nil {
		return nil
	}
	return *r.PredictedTemp
}

func scanReadings(rows *sql.Rows) ([]models.Reading, error) {
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var r models.Reading
		var ts time.Time
		var motion uint8
		var predicted sql.NullFloat64
		if err := rows.Scan(&r.DeviceID, &r.DeviceName, &ts, &r.Temperature, &r.Humidity, &motion, &predicted); err != nil {
			return nil, err
		}
		r.Timestamp = ts.UTC()
		r.Motion = int(motion)
		if predicted.Valid {
			v := predicted.Float64
			r.PredictedTemp = &v
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func reverse(readings []models.Reading) {
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
}
