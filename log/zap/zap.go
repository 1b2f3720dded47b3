package zap

import (
	promidas "github.com/F88/promidas-sub002"
	"go.uber.org/zap"
)

type ZapLogger struct{ L *zap.Logger }

var _ promidas.Logger = ZapLogger{}

func (z ZapLogger) Debug(msg string, f promidas.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f promidas.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f promidas.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f promidas.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f promidas.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
