package jobs

import (
	"errors"
	"testing"

	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/helpers"
	"github.com/iotflow/iotflow/pkg/models"
	smock "github.com/iotflow/iotflow/pkg/services/mock"
	"github.com/stretchr/testify/mock"
)

func TestRetentionSweep(t *testing.T) {
	identity := &smock.MockDeviceIdentityRepo{}
	telemetry := &smock.MockTelemetryRepo{}
	logger := helpers.SetupLogger(config.Info, "retention-test", "Jobs")

	identity.On("SelectAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		applyFunc := args.Get(1).(func(models.DeviceIdentity))
		applyFunc(models.DeviceIdentity{DeviceID: 1})
		applyFunc(models.DeviceIdentity{DeviceID: 2})
	}).Return(nil)

	telemetry.On("DeleteRange", mock.Anything, 1, mock.Anything, mock.Anything).Return(true, nil)
	telemetry.On("DeleteRange", mock.Anything, 2, mock.Anything, mock.Anything).Return(false, errors.New("no hosts available"))

	sweeper := NewRetentionSweeper(logger, identity, telemetry, 30)
	sweeper.Run()

	telemetry.AssertNumberOfCalls(t, "DeleteRange", 2)
}
