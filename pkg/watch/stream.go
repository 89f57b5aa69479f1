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

package watch

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"github.com/kubeworks/clientkit/pkg/logging"
)

// A DecodeFunc turns one newline-delimited wire frame into an event.
type DecodeFunc[T any] func(frame []byte) (Event[T], error)

// StreamWatcher adapts a raw byte stream of newline-delimited frames into a
// watch. It owns the stream: when the watcher stops, the stream closes, and
// vice versa.
type StreamWatcher[T any] struct {
	body   io.ReadCloser
	decode DecodeFunc[T]
	log    logging.Logger

	result   chan Event[T]
	stopCh   chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// StreamWatcherOption configures a StreamWatcher.
type StreamWatcherOption[T any] func(*StreamWatcher[T])

// WithStreamLogger sets the logger for a StreamWatcher.
func WithStreamLogger[T any](log logging.Logger) StreamWatcherOption[T] {
	return func(w *StreamWatcher[T]) {
		w.log = log
	}
}

// NewStreamWatcher starts decoding frames from body. The watcher takes
// ownership of body.
func NewStreamWatcher[T any](body io.ReadCloser, decode DecodeFunc[T], opts ...StreamWatcherOption[T]) *StreamWatcher[T] {
	w := &StreamWatcher[T]{
		body:   body,
		decode: decode,
		log:    logging.NewNopLogger(),
		result: make(chan Event[T]),
		stopCh: make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	go w.run()
	return w
}

// ResultChan returns the event channel.
func (w *StreamWatcher[T]) ResultChan() <-chan Event[T] {
	return w.result
}

// Stop cancels the watch and closes the underlying stream exactly once.
func (w *StreamWatcher[T]) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		// Unblocks the pending read in run.
		_ = w.body.Close()
	})
}

// Err reports the terminal error, nil for a stop or clean end of stream.
func (w *StreamWatcher[T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *StreamWatcher[T]) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *StreamWatcher[T]) stopped() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *StreamWatcher[T]) run() {
	defer close(w.result)
	defer w.Stop()

	reader := bufio.NewReader(w.body)
	for {
		frame, err := reader.ReadBytes('\n')
		if line := bytes.TrimSpace(frame); len(line) > 0 {
			evt, derr := w.decode(line)
			if derr != nil {
				w.fail(derr)
				return
			}
			select {
			case w.result <- evt:
			case <-w.stopCh:
				return
			}
		}
		if err != nil {
			// A read error after Stop is the close we caused, not a
			// transport failure. A bare EOF is a clean end of stream.
			if err != io.EOF && !w.stopped() {
				w.fail(err)
			}
			return
		}
	}
}
