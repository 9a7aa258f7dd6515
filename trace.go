// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"io"

	"github.com/sirupsen/logrus"
)

// TraceTimestampFormat is the timestamp layout of trace lines.
const TraceTimestampFormat = "15:04:05.000000"

// NewLogger returns a logger for the given role, which writes timestamped lines to out.
// If verbose is false, only warnings and errors are written.
func NewLogger(role Role, verbose bool, out io.Writer) *logrus.Entry {
	l := logrus.New()
	l.Out = out
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: TraceTimestampFormat,
		DisableColors:   true,
	}
	if verbose {
		l.Level = logrus.DebugLevel
	} else {
		l.Level = logrus.WarnLevel
	}
	return l.WithField("role", string(role))
}
