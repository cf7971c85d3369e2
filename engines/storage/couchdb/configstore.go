package couchdb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kivik/kivik/v4"
	"github.com/iotflow/iotflow/pkg/engines/storage"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/sirupsen/logrus"
)

const DeviceConfigsDB = "device_configs"

type CouchDBConfigStore struct {
	db     *kivik.DB
	logger *logrus.Entry
}

func NewDeviceConfigRepository(logger *logrus.Entry, client *kivik.Client) (storage.DeviceConfigRepo, error) {
	db := client.DB(DeviceConfigsDB)
	if db.Err() != nil {
		return nil, db.Err()
	}

	return &CouchDBConfigStore{
		db:     db,
		logger: logger,
	}, nil
}

func configDocID(deviceID int) string {
	return fmt.Sprintf("device-config-%d", deviceID)
}

func (s *CouchDBConfigStore) SelectByDevice(ctx context.Context, deviceID int) (bool, *models.DeviceConfig, error) {
	var config models.DeviceConfig
	err := s.db.Get(ctx, configDocID(deviceID)).ScanDoc(&config)
	if err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, &config, nil
}

func (s *CouchDBConfigStore) Upsert(ctx context.Context, config *models.DeviceConfig) (*models.DeviceConfig, error) {
	docID := configDocID(config.DeviceID)
	config.ID = docID
	config.Updated = time.Now().UTC()

	exists, current, err := s.SelectByDevice(ctx, config.DeviceID)
	if err != nil {
		return nil, err
	}
	if exists {
		config.Rev = current.Rev
	}

	rev, err := s.db.Put(ctx, docID, config)
	if err != nil {
		return nil, err
	}
	config.Rev = rev

	return config, nil
}
