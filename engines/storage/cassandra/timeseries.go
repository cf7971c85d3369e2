package cassandra

import (
	"context"
	"time"

	"github.com/gocql/gocql"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/engines/storage"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/sirupsen/logrus"
)

const availabilityProbeTimeout = 5 * time.Second

var tableStatements = []string{
	`CREATE TABLE IF NOT EXISTS device_data (
		device_id int,
		timestamp timestamp,
		measurement_name text,
		value double,
		user_id int,
		PRIMARY KEY ((device_id), timestamp, measurement_name)
	) WITH CLUSTERING ORDER BY (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS user_data (
		user_id int,
		timestamp timestamp,
		device_id int,
		measurement_name text,
		value double,
		PRIMARY KEY ((user_id), timestamp, device_id, measurement_name)
	) WITH CLUSTERING ORDER BY (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS latest_data (
		device_id int,
		measurement_name text,
		value double,
		timestamp timestamp,
		PRIMARY KEY (device_id, measurement_name)
	)`,
}

func CreateCassandraConnection(logger *logrus.Entry, cfg config.CassandraConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.Quorum
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: string(cfg.Password),
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		logger.Errorf("could not connect to cassandra cluster: %s", err)
		return nil, err
	}

	return session, nil
}

type CassandraTelemetryStore struct {
	session *gocql.Session
	logger  *logrus.Entry
}

func NewTelemetryRepository(logger *logrus.Entry, session *gocql.Session) (storage.TelemetryRepo, error) {
	for _, stmt := range tableStatements {
		if err := session.Query(stmt).Exec(); err != nil {
			return nil, err
		}
	}

	return &CassandraTelemetryStore{
		session: session,
		logger:  logger,
	}, nil
}

func (s *CassandraTelemetryStore) Write(ctx context.Context, deviceID int, userID int, measurements map[string]interface{}, ts time.Time) (bool, error) {
	if deviceID == 0 {
		return false, nil
	}
	numeric := models.NumericMeasurements(measurements)
	if len(numeric) == 0 {
		return false, nil
	}

	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for name, value := range numeric {
		batch.Query(
			`INSERT INTO device_data (device_id, timestamp, measurement_name, value, user_id) VALUES (?, ?, ?, ?, ?)`,
			deviceID, ts, name, value, userID,
		)
		batch.Query(
			`INSERT INTO user_data (user_id, timestamp, device_id, measurement_name, value) VALUES (?, ?, ?, ?, ?)`,
			userID, ts, deviceID, name, value,
		)
		batch.Query(
			`INSERT INTO latest_data (device_id, measurement_name, value, timestamp) VALUES (?, ?, ?, ?)`,
			deviceID, name, value, ts,
		)
	}

	if err := s.session.ExecuteBatch(batch); err != nil {
		return false, err
	}

	return true, nil
}

func (s *CassandraTelemetryStore) GetRange(ctx context.Context, deviceID int, start time.Time, end time.Time, limit int) ([]models.TelemetryGroup, error) {
	iter := s.session.Query(
		`SELECT timestamp, measurement_name, value FROM device_data WHERE device_id = ? AND timestamp >= ? AND timestamp <= ? LIMIT ?`,
		deviceID, start, end, limit,
	).WithContext(ctx).Iter()

	var points []models.TelemetryPoint
	var ts time.Time
	var name string
	var value float64
	for iter.Scan(&ts, &name, &value) {
		points = append(points, models.TelemetryPoint{
			DeviceID:        deviceID,
			Timestamp:       ts,
			MeasurementName: name,
			Value:           value,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return groupPoints(points), nil
}

func (s *CassandraTelemetryStore) GetLatest(ctx context.Context, deviceID int) (*models.LatestSnapshot, error) {
	iter := s.session.Query(
		`SELECT measurement_name, value, timestamp FROM latest_data WHERE device_id = ?`,
		deviceID,
	).WithContext(ctx).Iter()

	snapshot := &models.LatestSnapshot{
		DeviceID:     deviceID,
		Measurements: map[string]float64{},
		Timestamps:   map[string]time.Time{},
	}

	var name string
	var value float64
	var ts time.Time
	for iter.Scan(&name, &value, &ts) {
		snapshot.Measurements[name] = value
		snapshot.Timestamps[name] = ts
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	if len(snapshot.Measurements) == 0 {
		return nil, nil
	}

	return snapshot, nil
}

func (s *CassandraTelemetryStore) GetUserRange(ctx context.Context, userID int, start time.Time, end time.Time, limit int) ([]models.UserTelemetryRecord, error) {
	iter := s.session.Query(
		`SELECT timestamp, device_id, measurement_name, value FROM user_data WHERE user_id = ? AND timestamp >= ? AND timestamp <= ? LIMIT ?`,
		userID, start, end, limit,
	).WithContext(ctx).Iter()

	var records []models.UserTelemetryRecord
	var ts time.Time
	var deviceID int
	var name string
	var value float64
	for iter.Scan(&ts, &deviceID, &name, &value) {
		records = append(records, models.UserTelemetryRecord{
			UserID:          userID,
			DeviceID:        deviceID,
			Timestamp:       ts,
			MeasurementName: name,
			Value:           value,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *CassandraTelemetryStore) CountUserPoints(ctx context.Context, userID int, start time.Time, end time.Time) (int, error) {
	var count int
	err := s.session.Query(
		`SELECT COUNT(*) FROM user_data WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?`,
		userID, start, end,
	).WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *CassandraTelemetryStore) DeleteRange(ctx context.Context, deviceID int, start time.Time, end time.Time) (bool, error) {
	err := s.session.Query(
		`DELETE FROM device_data WHERE device_id = ? AND timestamp >= ? AND timestamp <= ?`,
		deviceID, start, end,
	).WithContext(ctx).Exec()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *CassandraTelemetryStore) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, availabilityProbeTimeout)
	defer cancel()

	var now gocql.UUID
	err := s.session.Query(`SELECT now() FROM system.local`).WithContext(probeCtx).Scan(&now)
	if err != nil {
		s.logger.Warnf("time-series store probe failed: %s", err)
		return false
	}
	return true
}

// groupPoints folds timestamp-descending rows into one result row per
// timestamp. Rows are expected already sorted by the clustering order; only
// consecutive rows are merged.
func groupPoints(points []models.TelemetryPoint) []models.TelemetryGroup {
	groups := []models.TelemetryGroup{}
	for _, point := range points {
		n := len(groups)
		if n > 0 && groups[n-1].Timestamp.Equal(point.Timestamp) {
			groups[n-1].Measurements[point.MeasurementName] = point.Value
			continue
		}
		groups = append(groups, models.TelemetryGroup{
			Timestamp:    point.Timestamp,
			Measurements: map[string]float64{point.MeasurementName: point.Value},
		})
	}
	return groups
}
