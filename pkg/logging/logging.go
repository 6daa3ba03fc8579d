// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup sets the level and format of the standard logger. Output goes to
// stderr, and also to file when one is named. The returned Closer releases
// the file.
func Setup(level, format, file string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(lvl)

	switch format {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if file == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

// SetupFileOnly is Setup for interactive commands that own the terminal:
// log lines go to file only, or are discarded when file is empty.
func SetupFileOnly(level, format, file string) (io.Closer, error) {
	c, err := Setup(level, format, file)
	if err != nil {
		return nil, err
	}
	if f, ok := c.(*os.File); ok {
		logrus.SetOutput(f)
	} else {
		logrus.SetOutput(io.Discard)
	}
	return c, nil
}
