package logger

import (
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	// Packages log through Log before main calls Init; tests rely on this too.
	Log = logrus.New()
}

// Init switches Log to JSON on stdout at LOG_LEVEL and stamps every entry
// with the binary name.
func Init(service string) {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "message",
		},
	})
	Log.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
	if service != "" {
		Log.AddHook(serviceHook(service))
	}
}

func parseLevel(raw string) logrus.Level {
	if raw == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// ForRun scopes an entry to one import run.
func ForRun(tenantID string, runID uuid.UUID) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"run_id":    runID,
	})
}

type serviceHook string

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = string(h)
	}
	return nil
}
