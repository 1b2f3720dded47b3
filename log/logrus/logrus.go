package logrus

import (
	promidas "github.com/F88/promidas-sub002"
	"github.com/sirupsen/logrus"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ promidas.Logger = LogrusLogger{}

func (l LogrusLogger) Debug(msg string, f promidas.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f promidas.Fields) {
	l.E.WithFields(logrus.Fields(f)).Info(msg)
}
func (l LogrusLogger) Warn(msg string, f promidas.Fields) {
	l.E.WithFields(logrus.Fields(f)).Warn(msg)
}
func (l LogrusLogger) Error(msg string, f promidas.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
