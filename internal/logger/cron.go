package logger

import "fmt"

// CronLogger adapts Logger to the key/value logger expected by robfig/cron.
type CronLogger struct {
	Log Logger
}

func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.Log.Debug(msg, pairs(keysAndValues)...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.Log.Error(msg, append(pairs(keysAndValues), Error(err))...)
}

func pairs(kv []interface{}) []Field {
	fields := make([]Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
