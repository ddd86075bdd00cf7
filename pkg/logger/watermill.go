package logger

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// Watermill adapts the global logger for the event bus.
func Watermill() watermill.LoggerAdapter {
	return &watermillAdapter{fields: watermill.LogFields{}}
}

type watermillAdapter struct {
	fields watermill.LogFields
}

func (a *watermillAdapter) entry(fields watermill.LogFields) *logrus.Entry {
	all := logrus.Fields{}
	for k, v := range a.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	return globalLogger.WithFields(all)
}

func (a *watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.entry(fields).WithError(err).Error(msg)
}

func (a *watermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.entry(fields).Info(msg)
}

func (a *watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.entry(fields).Debug(msg)
}

func (a *watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.entry(fields).Trace(msg)
}

func (a *watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillAdapter{fields: a.fields.Add(fields)}
}
