package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/iotflow/iotflow/pkg/engines/storage"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PostgresDeviceIdentityStore struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewDeviceIdentityRepository(logger *logrus.Entry, db *gorm.DB) (storage.DeviceIdentityRepo, error) {
	if err := db.AutoMigrate(&models.DeviceIdentity{}); err != nil {
		return nil, err
	}

	return &PostgresDeviceIdentityStore{
		db:     db,
		logger: logger,
	}, nil
}

func (s *PostgresDeviceIdentityStore) SelectExists(ctx context.Context, deviceID int) (bool, *models.DeviceIdentity, error) {
	var device models.DeviceIdentity
	err := s.db.WithContext(ctx).First(&device, "device_id = ?", deviceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, &device, nil
}

func (s *PostgresDeviceIdentityStore) SelectByAPIKey(ctx context.Context, apiKey string) (bool, *models.DeviceIdentity, error) {
	var device models.DeviceIdentity
	err := s.db.WithContext(ctx).First(&device, "api_key = ?", apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, &device, nil
}

func (s *PostgresDeviceIdentityStore) SelectByUser(ctx context.Context, userID int) ([]models.DeviceIdentity, error) {
	var devices []models.DeviceIdentity
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *PostgresDeviceIdentityStore) SelectAll(ctx context.Context, applyFunc func(models.DeviceIdentity)) error {
	var devices []models.DeviceIdentity
	result := s.db.WithContext(ctx).FindInBatches(&devices, 100, func(tx *gorm.DB, batch int) error {
		for _, device := range devices {
			applyFunc(device)
		}
		return nil
	})
	return result.Error
}

func (s *PostgresDeviceIdentityStore) UpdateLastSeen(ctx context.Context, deviceID int, seenAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.DeviceIdentity{}).
		Where("device_id = ?", deviceID).
		Update("last_seen", seenAt).Error
}

func (s *PostgresDeviceIdentityStore) IsAvailable(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		s.logger.Warnf("could not obtain underlying sql connection: %s", err)
		return false
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		s.logger.Warnf("identity store ping failed: %s", err)
		return false
	}
	return true
}
