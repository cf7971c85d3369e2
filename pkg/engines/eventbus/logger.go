package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// eventBusLogger routes watermill's internal logging through the service's
// logrus entry so broker chatter lands next to the telemetry logs.
type eventBusLogger struct {
	entry *logrus.Entry
}

func NewLoggerAdapter(l *logrus.Entry) watermill.LoggerAdapter {
	return &eventBusLogger{
		entry: l,
	}
}

func (l *eventBusLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l *eventBusLogger) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *eventBusLogger) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *eventBusLogger) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l *eventBusLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &eventBusLogger{
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}
