package logging

import (
	"os"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

func init() {
	Configure(Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Output:      os.Stdout,
		EnableColor: os.Getenv("LOG_COLOR") != "false",
	})
}

// Configure replaces the global logger. Loggers already derived with
// WithPrefix keep their old settings, so call this before building services.
func Configure(config Config) {
	globalLogger.Store(New(config))
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger.Load()
}

// WithPrefix returns a new logger with the specified prefix using the global logger
func WithPrefix(prefix string) *Logger {
	return GetGlobalLogger().WithPrefix(prefix)
}

func Debug(args ...interface{})                 { GetGlobalLogger().Debug(args...) }
func Debugf(format string, args ...interface{}) { GetGlobalLogger().Debugf(format, args...) }
func Info(args ...interface{})                  { GetGlobalLogger().Info(args...) }
func Infof(format string, args ...interface{})  { GetGlobalLogger().Infof(format, args...) }
func Warn(args ...interface{})                  { GetGlobalLogger().Warn(args...) }
func Warnf(format string, args ...interface{})  { GetGlobalLogger().Warnf(format, args...) }
func Error(args ...interface{})                 { GetGlobalLogger().Error(args...) }
func Errorf(format string, args ...interface{}) { GetGlobalLogger().Errorf(format, args...) }
func Fatal(args ...interface{})                 { GetGlobalLogger().Fatal(args...) }
func Fatalf(format string, args ...interface{}) { GetGlobalLogger().Fatalf(format, args...) }
