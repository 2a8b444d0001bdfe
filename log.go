package rentroll

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package logger. Per-record defects are logged at debug level with the
// lease key and amendment id as fields; commands raise the level with -v.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	Log.SetLevel(logrus.InfoLevel)
}
