// Package logging owns the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log categories. They end up in the "cat" field of every entry so output
// can be filtered per subsystem.
const (
	CatCore   = "core"
	CatRender = "render"
	CatAudio  = "audio"
	CatInput  = "input"
	CatGame   = "game"
	CatNet    = "net"
)

// Log is the global logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures Log from the environment.
//
// LOG_LEVEL selects the minimum level (default "info"), LOG_FORMAT=json
// switches to JSON output, anything else gives coloured text.
func Init() {
	configure(Log, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stdout)
}

func configure(l *logrus.Logger, level, format string, out io.Writer) {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}
	l.SetOutput(out)
}

// Cat returns an entry tagged with the given category.
func Cat(name string) *logrus.Entry {
	return Log.WithField("cat", name)
}

// Or returns l, or the category logger when l is nil.
func Or(l logrus.FieldLogger, cat string) logrus.FieldLogger {
	if l != nil {
		return l
	}
	return Cat(cat)
}
