// Package gamelog wraps a single process-wide logrus logger, following the
// shape of Cognitive-Dungeon-cd-backend-go's pkg/logger: one package-level
// instance configured once from the environment at process start.
package gamelog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is safe for concurrent use, which
// matters here because the path worker pool (C5) logs from worker
// goroutines while the tick engine logs from the simulation thread.
var Log = logrus.New()

// Init configures the logger from the LOG_LEVEL and LOG_FORMAT environment
// variables, defaulting to info/text.
func Init() {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if os.Getenv("LOG_FORMAT") == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	Log.SetOutput(os.Stdout)
}
