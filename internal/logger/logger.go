package logger

import "github.com/sirupsen/logrus"

// Log is the process-wide logger.
var Log = logrus.New()

// Init sets the level and format. Unknown levels fall back to info.
func Init(levelStr string) {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}
