package logging

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// TaskLogger adapts logrus to the backlite.Logger interface. backlite passes
// params as alternating key/value pairs.
type TaskLogger struct {
	Logger *log.Logger
}

func (l TaskLogger) Info(message string, params ...any) {
	l.entry(params).Info(message)
}

func (l TaskLogger) Error(message string, params ...any) {
	l.entry(params).Error(message)
}

func (l TaskLogger) entry(params []any) *log.Entry {
	logger := l.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return logger.WithField("component", "tasks").WithFields(pairs(params))
}

func pairs(params []any) log.Fields {
	fields := make(log.Fields, len(params)/2+1)
	for i := 0; i < len(params); i += 2 {
		key := fmt.Sprint(params[i])
		if i+1 == len(params) {
			fields["extra"] = params[i]
			break
		}
		fields[key] = params[i+1]
	}
	return fields
}
