// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the project-wide structured logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the root logger: JSON in production, text with colors when
// attached to a terminal, level driven by the level string (defaults to
// "info" on an unrecognized value).
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if isTerminal(os.Stderr) {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// Component returns a logger entry scoped to one pipeline component; serve
// builds one for each component it wires (citelink, coordinator, pool, api).
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

// Task returns a logger entry scoped to one component and task_id.
func Task(log *logrus.Logger, component, taskID string) *logrus.Entry {
	return log.WithFields(logrus.Fields{"component": component, "task_id": taskID})
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
