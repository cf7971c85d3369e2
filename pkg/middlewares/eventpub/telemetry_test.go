package eventpub

import (
	"context"
	"errors"
	"testing"

	"github.com/iotflow/iotflow/pkg/models"
	"github.com/iotflow/iotflow/pkg/services"
	smock "github.com/iotflow/iotflow/pkg/services/mock"
	"github.com/stretchr/testify/mock"
)

type mockCloudEventPublisher struct {
	mock.Mock
}

func (m *mockCloudEventPublisher) PublishCloudEvent(ctx context.Context, eventType models.EventType, payload interface{}) {
	m.Called(ctx, eventType, payload)
}

func setupPublisherTest() (*smock.MockTelemetryService, *mockCloudEventPublisher, services.TelemetryService) {
	svc := &smock.MockTelemetryService{}
	pub := &mockCloudEventPublisher{}
	wrapped := NewTelemetryEventPublisher(pub)(svc)
	return svc, pub, wrapped
}

func TestPublishesEventOnSubmit(t *testing.T) {
	ctx := context.Background()
	svc, pub, wrapped := setupPublisherTest()

	input := services.SubmitTelemetryInput{APIKey: "k", Data: map[string]interface{}{"t": 1.0}}
	output := &services.SubmitTelemetryOutput{DeviceID: 1, PointsStored: 1}

	svc.On("SubmitTelemetry", ctx, input).Return(output, nil)
	pub.On("PublishCloudEvent", ctx, models.EventTelemetrySubmitted, output).Return()

	_, err := wrapped.SubmitTelemetry(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	pub.AssertExpectations(t)
}

func TestNoEventOnFailedSubmit(t *testing.T) {
	ctx := context.Background()
	svc, pub, wrapped := setupPublisherTest()

	input := services.SubmitTelemetryInput{APIKey: "k", Data: map[string]interface{}{"t": 1.0}}
	svc.On("SubmitTelemetry", ctx, input).Return(nil, errors.New("store down"))

	_, err := wrapped.SubmitTelemetry(ctx, input)
	if err == nil {
		t.Fatal("expected error")
	}

	pub.AssertNotCalled(t, "PublishCloudEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestNoEventOnReads(t *testing.T) {
	ctx := context.Background()
	svc, pub, wrapped := setupPublisherTest()

	input := services.GetLatestTelemetryInput{DeviceID: 1, APIKey: "k"}
	svc.On("GetLatestTelemetry", ctx, input).Return(&services.GetLatestTelemetryOutput{DeviceID: 1}, nil)

	_, err := wrapped.GetLatestTelemetry(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	pub.AssertNotCalled(t, "PublishCloudEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishesEventOnConfigUpdate(t *testing.T) {
	ctx := context.Background()
	svc, pub, wrapped := setupPublisherTest()

	input := services.UpdateDeviceConfigInput{DeviceID: 1, APIKey: "k", Config: map[string]interface{}{"interval_s": 30.0}}
	output := &models.DeviceConfig{DeviceID: 1, Config: map[string]interface{}{"interval_s": 30.0}}

	svc.On("UpdateDeviceConfig", ctx, input).Return(output, nil)
	pub.On("PublishCloudEvent", ctx, models.EventConfigUpdated, output).Return()

	_, err := wrapped.UpdateDeviceConfig(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	pub.AssertExpectations(t)
}

func TestPublishesEventOnDelete(t *testing.T) {
	ctx := context.Background()
	svc, pub, wrapped := setupPublisherTest()

	input := services.DeleteTelemetryInput{DeviceID: 1, APIKey: "k", StartTime: "2025-03-01T00:00:00Z", EndTime: "2025-03-02T00:00:00Z"}
	output := &services.DeleteTelemetryOutput{DeviceID: 1, Deleted: true}

	svc.On("DeleteTelemetry", ctx, input).Return(output, nil)
	pub.On("PublishCloudEvent", ctx, models.EventTelemetryDeleted, output).Return()

	_, err := wrapped.DeleteTelemetry(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	pub.AssertExpectations(t)
}
