// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package w3gtest

import (
	"fmt"

	"github.com/danjacques/gow3replay/support/logging"
)

// Logger is a logging.L that records the messages logged through it.
type Logger struct {
	Warnings []string
	Debugs   []string
}

var _ logging.L = (*Logger)(nil)

// Warn implements logging.L.
func (l *Logger) Warn(args ...interface{}) { l.Warnings = append(l.Warnings, fmt.Sprint(args...)) }

// Debug implements logging.L.
func (l *Logger) Debug(args ...interface{}) { l.Debugs = append(l.Debugs, fmt.Sprint(args...)) }

// Warnf implements logging.L.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Warnings = append(l.Warnings, fmt.Sprintf(format, args...))
}

// Debugf implements logging.L.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Debugs = append(l.Debugs, fmt.Sprintf(format, args...))
}
