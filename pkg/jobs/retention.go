package jobs

import (
	"time"

	"github.com/iotflow/iotflow/pkg/engines/storage"
	"github.com/iotflow/iotflow/pkg/helpers"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/sirupsen/logrus"
)

// RetentionSweeper deletes telemetry older than the retention horizon,
// device by device. It works directly against the stores; retention is an
// operator concern, not a device-authenticated API call.
type RetentionSweeper struct {
	logger           *logrus.Entry
	identityStorage  storage.DeviceIdentityRepo
	telemetryStorage storage.TelemetryRepo
	maxAge           time.Duration
}

func NewRetentionSweeper(logger *logrus.Entry, identityStorage storage.DeviceIdentityRepo, telemetryStorage storage.TelemetryRepo, maxAgeDays int) *RetentionSweeper {
	return &RetentionSweeper{
		logger:           logger,
		identityStorage:  identityStorage,
		telemetryStorage: telemetryStorage,
		maxAge:           time.Duration(maxAgeDays) * 24 * time.Hour,
	}
}

func (svc *RetentionSweeper) Run() {
	ctx := helpers.InitContext()
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	start := time.Now()
	cutoff := start.Add(-svc.maxAge).UTC()
	lFunc.Infof("starting retention sweep for data older than %s", cutoff.Format(time.RFC3339))

	swept := 0
	failed := 0
	err := svc.identityStorage.SelectAll(ctx, func(device models.DeviceIdentity) {
		_, err := svc.telemetryStorage.DeleteRange(ctx, device.DeviceID, time.Unix(0, 0).UTC(), cutoff)
		if err != nil {
			lFunc.Warnf("could not sweep device %d: %s", device.DeviceID, err)
			failed++
			return
		}
		swept++
	})
	if err != nil {
		lFunc.Errorf("could not list devices for retention sweep: %s", err)
		return
	}

	lFunc.Infof("retention sweep done. Swept %d devices (%d failed). Took %v", swept, failed, time.Since(start))
}
