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

// Package watch carries incremental change notifications for a collection.
// A watch is a lazy, possibly infinite sequence of events delivered in
// server order.
package watch

import "github.com/kubeworks/clientkit/pkg/meta"

// EventType names what happened to the object an event carries.
type EventType string

const (
	// Added announces an object, either newly created or re-announced after
	// a relist.
	Added EventType = "ADDED"

	// Modified announces a change to an existing object.
	Modified EventType = "MODIFIED"

	// Deleted announces the removal of an object.
	Deleted EventType = "DELETED"

	// Bookmark advances the resume token without any object change.
	Bookmark EventType = "BOOKMARK"

	// Error carries a server-reported Status and terminates the stream.
	Error EventType = "ERROR"
)

// Event is one change notification. Object is set for Added, Modified,
// Deleted and Bookmark events; Status is set for Error events.
type Event[T any] struct {
	Type   EventType
	Object T
	Status *meta.Status
}

// Interface is a watch in progress. The result channel closes when the
// watch ends for any reason; Err distinguishes why.
type Interface[T any] interface {
	// ResultChan returns the channel events arrive on. It is closed when
	// the watch terminates.
	ResultChan() <-chan Event[T]

	// Stop cancels the watch. It is safe to call from any goroutine and
	// more than once; the underlying connection is released exactly once.
	Stop()

	// Err reports why the result channel closed: nil after Stop or clean
	// end-of-stream, the terminal failure otherwise.
	Err() error
}
