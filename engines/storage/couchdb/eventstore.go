package couchdb

import (
	"context"
	"time"

	"github.com/go-kivik/kivik/v4"
	"github.com/iotflow/iotflow/pkg/engines/storage"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/jakehl/goid"
	"github.com/sirupsen/logrus"
)

const EventLogsDB = "event_logs"

type CouchDBEventStore struct {
	client *kivik.Client
	db     *kivik.DB
	logger *logrus.Entry
}

func NewAuditEventRepository(logger *logrus.Entry, client *kivik.Client) (storage.AuditEventRepo, error) {
	db := client.DB(EventLogsDB)
	if db.Err() != nil {
		return nil, db.Err()
	}

	indexes := map[string]interface{}{
		"device-idx":    map[string]interface{}{"fields": []string{"device_id", "timestamp"}},
		"user-idx":      map[string]interface{}{"fields": []string{"user_id", "timestamp"}},
		"type-idx":      map[string]interface{}{"fields": []string{"event_type", "timestamp"}},
		"timestamp-idx": map[string]interface{}{"fields": []string{"timestamp"}},
	}
	for name, index := range indexes {
		if err := db.CreateIndex(context.TODO(), "", name, index); err != nil {
			logger.Warnf("could not create index %s: %s", name, err)
		}
	}

	return &CouchDBEventStore{
		client: client,
		db:     db,
		logger: logger,
	}, nil
}

func (s *CouchDBEventStore) Append(ctx context.Context, event *models.AuditEvent) (string, error) {
	if event.ID == "" {
		event.ID = goid.NewV4UUID().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	// Mango range selectors compare timestamps as strings, so stored values
	// and query bounds must share one precision. Events keep whole seconds.
	event.Timestamp = normalizeEventTime(event.Timestamp)

	rev, err := s.db.Put(ctx, event.ID, event)
	if err != nil {
		return "", err
	}
	event.Rev = rev

	return event.ID, nil
}

func (s *CouchDBEventStore) SelectByDevice(ctx context.Context, deviceID int, limit int) ([]models.AuditEvent, error) {
	return s.find(ctx, map[string]interface{}{"device_id": deviceID}, limit)
}

func (s *CouchDBEventStore) SelectByUser(ctx context.Context, userID int, limit int) ([]models.AuditEvent, error) {
	return s.find(ctx, map[string]interface{}{"user_id": userID}, limit)
}

func (s *CouchDBEventStore) SelectByType(ctx context.Context, eventType models.EventType, limit int) ([]models.AuditEvent, error) {
	return s.find(ctx, map[string]interface{}{"event_type": eventType}, limit)
}

func (s *CouchDBEventStore) SelectByTimeRange(ctx context.Context, start time.Time, end time.Time, limit int) ([]models.AuditEvent, error) {
	return s.find(ctx, timeRangeSelector(start, end), limit)
}

func timeRangeSelector(start time.Time, end time.Time) map[string]interface{} {
	return map[string]interface{}{
		"timestamp": map[string]interface{}{
			"$gte": normalizeEventTime(start).Format(time.RFC3339),
			"$lte": normalizeEventTime(end).Format(time.RFC3339),
		},
	}
}

func normalizeEventTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (s *CouchDBEventStore) find(ctx context.Context, selector map[string]interface{}, limit int) ([]models.AuditEvent, error) {
	opts := map[string]interface{}{
		"selector": selector,
		"sort":     []map[string]string{{"timestamp": "desc"}},
		"limit":    limit,
	}

	rs := s.db.Find(ctx, opts)
	if rs.Err() != nil {
		return nil, rs.Err()
	}
	defer rs.Close()

	events := []models.AuditEvent{}
	for rs.Next() {
		var event models.AuditEvent
		if err := rs.ScanDoc(&event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (s *CouchDBEventStore) IsAvailable(ctx context.Context) bool {
	ping, err := s.client.Ping(ctx)
	if err != nil {
		s.logger.Warnf("event store ping failed: %s", err)
		return false
	}
	return ping
}
