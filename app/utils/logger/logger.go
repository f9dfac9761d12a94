package logger

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	instance *logrus.Logger
	once     sync.Once
)

// GetLogger returns the process-wide logger. Output is JSON unless stdout is a terminal.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		instance = New(os.Getenv("LOG_LEVEL"), isatty.IsTerminal(os.Stdout.Fd()))
	})
	return instance
}

func New(level string, terminal bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if terminal {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}
