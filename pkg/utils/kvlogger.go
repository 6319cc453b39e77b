package utils

import "go.uber.org/zap"

// KeyValueLogger adapts zap.Logger to the keysAndValues logging interfaces the
// application services depend on
type KeyValueLogger struct {
	sugar *zap.SugaredLogger
}

// NewKeyValueLogger creates a new key-value logging adapter
func NewKeyValueLogger(logger *zap.Logger) *KeyValueLogger {
	return &KeyValueLogger{sugar: logger.Sugar()}
}

// Info logs a message with key-value context
func (l *KeyValueLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Error logs an error message with key-value context
func (l *KeyValueLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
