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

package client

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kubeworks/clientkit/pkg/apierrors"
	"github.com/kubeworks/clientkit/pkg/meta"
	"github.com/kubeworks/clientkit/pkg/watch"
)

const errWatchEnded = "watch stream reported failure"

// errInterrupted marks an attempt cut short by Stop or context
// cancellation. It never escapes the engine.
var errInterrupted = errors.New("interrupted")

// ListWatch returns a long-lived event stream over the collection. It
// first lists every object, delivering each as a synthetic Added event,
// then watches from the list's resourceVersion so no change between the
// two is lost. Dropped connections are re-established at the last
// delivered resourceVersion; when the server reports that version as
// expired the engine relists and the full collection is announced again.
//
// The stream ends only on Stop, cancellation of ctx, or a terminal
// failure; Err distinguishes the three. Bookmark events advance the
// resume token internally and are not delivered.
func (c *Client[T]) ListWatch(ctx context.Context, namespace string, opts ListOptions) watch.Interface[T] {
	lw := &listWatcher[T]{
		client:    c,
		namespace: namespace,
		opts:      opts,
		result:    make(chan watch.Event[T]),
		stopCh:    make(chan struct{}),
	}
	go lw.run(ctx)
	return lw
}

// outcome classifies how one list or watch attempt ended.
type outcome int

const (
	// outcomeRetry resumes watching at the last delivered resourceVersion.
	outcomeRetry outcome = iota

	// outcomeRelist discards the resume token and lists from scratch.
	outcomeRelist

	// outcomeTerminate ends the stream with a failure.
	outcomeTerminate

	// outcomeInterrupted ends the stream because of Stop or ctx.
	outcomeInterrupted
)

type listWatcher[T meta.Object] struct {
	client    *Client[T]
	namespace string
	opts      ListOptions

	result   chan watch.Event[T]
	stopCh   chan struct{}
	stopOnce sync.Once

	// rv and authFails are touched only by the run goroutine.
	rv        string
	authFails int

	mu  sync.Mutex
	err error
}

func (lw *listWatcher[T]) ResultChan() <-chan watch.Event[T] {
	return lw.result
}

func (lw *listWatcher[T]) Stop() {
	lw.stopOnce.Do(func() { close(lw.stopCh) })
}

func (lw *listWatcher[T]) Err() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.err
}

func (lw *listWatcher[T]) run(ctx context.Context) {
	defer close(lw.result)

	resource := lw.client.resource.String()
	limiter := lw.client.newBackoff()
	relist := true
	for {
		if relist {
			lw.client.metrics.Relist(resource)
			err := lw.list(ctx)
			if err != nil {
				o, terr := lw.classify(err)
				switch o {
				case outcomeInterrupted:
					lw.finish(ctx, nil)
					return
				case outcomeTerminate:
					lw.finish(ctx, terr)
					return
				}
				// Listing again covers both retry and relist.
				if limiter.Wait(ctx) != nil {
					lw.finish(ctx, nil)
					return
				}
				continue
			}
			lw.client.log.Debug("Listed collection", "resourceVersion", lw.rv)
			relist = false
		}

		o, err := lw.watchOnce(ctx)
		switch o {
		case outcomeInterrupted:
			lw.finish(ctx, nil)
			return
		case outcomeTerminate:
			lw.finish(ctx, err)
			return
		case outcomeRelist:
			lw.client.log.Debug("Resume token expired, relisting", "resourceVersion", lw.rv)
			relist = true
		case outcomeRetry:
			lw.client.log.Debug("Watch disconnected, resuming", "resourceVersion", lw.rv)
		}

		lw.client.metrics.Reconnect(resource)
		if limiter.Wait(ctx) != nil {
			lw.finish(ctx, nil)
			return
		}
	}
}

// list drains every page of the collection, announcing each object as a
// synthetic Added event, and records the final page's resourceVersion as
// the point to watch from.
func (lw *listWatcher[T]) list(ctx context.Context) error {
	resource := lw.client.resource.String()
	opts := lw.opts
	opts.ResourceVersion = ""
	opts.Continue = ""
	for {
		page, err := lw.client.List(ctx, lw.namespace, opts)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			if !lw.forward(ctx, watch.Event[T]{Type: watch.Added, Object: item}) {
				return errInterrupted
			}
			lw.client.metrics.Event(resource, string(watch.Added))
		}
		if page.Metadata.Continue == "" {
			lw.rv = page.Metadata.ResourceVersion
			lw.authFails = 0
			return nil
		}
		opts.Continue = page.Metadata.Continue
	}
}

// watchOnce runs a single watch connection from the current resume token
// until it ends, reporting how the engine should proceed.
func (lw *listWatcher[T]) watchOnce(ctx context.Context) (outcome, error) {
	resource := lw.client.resource.String()
	opts := lw.opts
	opts.ResourceVersion = lw.rv
	opts.Continue = ""
	opts.Limit = 0
	opts.AllowWatchBookmarks = true

	w, err := lw.client.Watch(ctx, lw.namespace, opts)
	if err != nil {
		return lw.classify(err)
	}
	defer w.Stop()
	lw.authFails = 0

	// A silent stream is cut and resumed at the last seen version. Stop
	// is idempotent, so racing the deferred Stop is harmless.
	idle := time.AfterFunc(lw.client.idleTimeout, w.Stop)
	defer idle.Stop()

	for {
		select {
		case <-lw.stopCh:
			return outcomeInterrupted, nil
		case <-ctx.Done():
			return outcomeInterrupted, nil
		case ev, ok := <-w.ResultChan():
			if !ok {
				if werr := w.Err(); werr != nil {
					return lw.classify(werr)
				}
				// Clean end of stream, or our own idle cut.
				return outcomeRetry, nil
			}
			idle.Reset(lw.client.idleTimeout)
			switch ev.Type {
			case watch.Bookmark:
				lw.rv = ev.Object.GetResourceVersion()
			case watch.Error:
				if expired(ev.Status) {
					return outcomeRelist, nil
				}
				if ev.Status != nil {
					return outcomeTerminate, apierrors.NewFromStatus(*ev.Status)
				}
				return outcomeTerminate, errors.New(errWatchEnded)
			default:
				lw.rv = ev.Object.GetResourceVersion()
				if !lw.forward(ctx, ev) {
					return outcomeInterrupted, nil
				}
				lw.client.metrics.Event(resource, string(ev.Type))
			}
		}
	}
}

// classify decides how an attempt's failure affects the engine.
func (lw *listWatcher[T]) classify(err error) (outcome, error) {
	switch {
	case errors.Is(err, errInterrupted), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeInterrupted, nil
	case apierrors.IsGone(err):
		return outcomeRelist, nil
	case apierrors.IsUnauthorized(err), apierrors.IsForbidden(err):
		lw.authFails++
		if lw.authFails > lw.client.authRetries {
			return outcomeTerminate, err
		}
		lw.client.log.Debug("Authentication failed, retrying", "attempt", lw.authFails, "error", err)
		return outcomeRetry, nil
	case apierrors.IsDecode(err):
		return outcomeTerminate, err
	case isStatus(err):
		return outcomeTerminate, err
	default:
		// Transport failure; the resume token is still good.
		return outcomeRetry, nil
	}
}

// forward delivers one event, giving up if the watch is stopped or the
// context is cancelled while the consumer is not receiving.
func (lw *listWatcher[T]) forward(ctx context.Context, ev watch.Event[T]) bool {
	select {
	case lw.result <- ev:
		return true
	case <-lw.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// finish records why the stream ended. Stop always wins: a stream the
// caller asked to end is never an error, whatever the engine was doing.
func (lw *listWatcher[T]) finish(ctx context.Context, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	switch {
	case lw.stopRequested():
		lw.err = nil
	case err != nil:
		lw.err = err
	default:
		lw.err = ctx.Err()
	}
}

func (lw *listWatcher[T]) stopRequested() bool {
	select {
	case <-lw.stopCh:
		return true
	default:
		return false
	}
}

// expired reports whether a server-sent error status means the resume
// token is no longer available and a relist is required.
func expired(s *meta.Status) bool {
	if s == nil {
		return false
	}
	return s.Code == 410 || s.Reason == meta.ReasonGone || s.Reason == meta.ReasonExpired
}

func isStatus(err error) bool {
	var se *apierrors.StatusError
	return errors.As(err, &se)
}
