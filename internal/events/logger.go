package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// WatermillLogger routes watermill logs through a logrus entry.
type WatermillLogger struct {
	entry *logrus.Entry
}

func NewWatermillLogger(entry *logrus.Entry) *WatermillLogger {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return &WatermillLogger{entry: entry}
}

func (l *WatermillLogger) fields(f watermill.LogFields) *logrus.Entry {
	return l.entry.WithFields(logrus.Fields(f))
}

func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.fields(fields).WithError(err).Error(msg)
}

func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.fields(fields).Info(msg)
}

func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.fields(fields).Debug(msg)
}

func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.fields(fields).Trace(msg)
}

func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{entry: l.fields(fields)}
}
