// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"fmt"
)

// L accepts logging data.
//
// L is designed to automatically conform to zap's zap.SugaredLogger, but is
// generic enough that any logger should be able to match it.
type L interface {
	// Warn emits a warning-level log.
	Warn(args ...interface{})
	// Debug emits a debug-level log.
	Debug(args ...interface{})

	// Warnf emits a warning-level log.
	Warnf(fmt string, args ...interface{})
	// Debugf emits a debug-level log.
	Debugf(fmt string, args ...interface{})
}

// Nop is a L instance that does nothing.
var Nop L = nopLogger{}

// Must ensures that a valid L is available. If l is not nil, it will be
// returned; otherwise, Must will return Nop.
func Must(l L) L {
	if l != nil {
		return l
	}
	return Nop
}

// With returns an L that prefixes every message logged through l with a
// bracketed context label, e.g. "[block #3] ".
//
// If l is nil or Nop, Nop is returned.
func With(l L, label string) L {
	if l == nil || l == Nop {
		return Nop
	}
	return &labeledLogger{base: l, prefix: "[" + label + "] "}
}

type labeledLogger struct {
	base   L
	prefix string
}

func (ll *labeledLogger) Warn(args ...interface{}) {
	ll.base.Warn(ll.prefix + fmt.Sprint(args...))
}

func (ll *labeledLogger) Debug(args ...interface{}) {
	ll.base.Debug(ll.prefix + fmt.Sprint(args...))
}

func (ll *labeledLogger) Warnf(format string, args ...interface{}) {
	ll.base.Warnf(ll.prefix+format, args...)
}

func (ll *labeledLogger) Debugf(format string, args ...interface{}) {
	ll.base.Debugf(ll.prefix+format, args...)
}

type nopLogger struct{}

func (nopLogger) Warn(args ...interface{})  {}
func (nopLogger) Debug(args ...interface{}) {}

func (nopLogger) Warnf(fmt string, args ...interface{})  {}
func (nopLogger) Debugf(fmt string, args ...interface{}) {}
