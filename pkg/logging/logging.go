/*
Copyright 2025 The clientkit Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging provides the structured logger the library emits through.
// It is a thin facade over logr so callers can plug in whatever sink they
// already run.
package logging

import (
	"github.com/go-logr/logr"
)

// A Logger logs structured messages. Info is for state changes an operator
// may care about; Debug is for the library's internal chatter.
type Logger interface {
	// Info logs a message with optional key/value pairs.
	Info(msg string, keysAndValues ...any)

	// Debug logs a message at debug verbosity with optional key/value pairs.
	Debug(msg string, keysAndValues ...any)

	// WithValues returns a Logger that includes the supplied key/value pairs
	// on every message.
	WithValues(keysAndValues ...any) Logger
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return logrLogger{log: logr.Discard()}
}

// NewLogrLogger adapts a logr.Logger. Debug messages are logged at
// V(1).
func NewLogrLogger(l logr.Logger) Logger {
	return logrLogger{log: l}
}

type logrLogger struct {
	log logr.Logger
}

func (l logrLogger) Info(msg string, keysAndValues ...any) {
	l.log.Info(msg, keysAndValues...)
}

func (l logrLogger) Debug(msg string, keysAndValues ...any) {
	l.log.V(1).Info(msg, keysAndValues...)
}

func (l logrLogger) WithValues(keysAndValues ...any) Logger {
	return logrLogger{log: l.log.WithValues(keysAndValues...)}
}
