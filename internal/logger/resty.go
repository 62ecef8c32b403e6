package logger

import "fmt"

// RestyLogger routes resty's printf-style messages into Logger.
type RestyLogger struct {
	Log Logger
}

func (r RestyLogger) Errorf(format string, v ...interface{}) {
	r.Log.Error(fmt.Sprintf(format, v...), String("component", "http"))
}

func (r RestyLogger) Warnf(format string, v ...interface{}) {
	r.Log.Warn(fmt.Sprintf(format, v...), String("component", "http"))
}

func (r RestyLogger) Debugf(format string, v ...interface{}) {
	r.Log.Debug(fmt.Sprintf(format, v...), String("component", "http"))
}
