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
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"

	"github.com/kubeworks/clientkit/pkg/apierrors"
	"github.com/kubeworks/clientkit/pkg/rest"
	"github.com/kubeworks/clientkit/pkg/test"
	"github.com/kubeworks/clientkit/pkg/watch"
)

// noBackoff removes reconnect pacing so engine tests run instantly.
func noBackoff() Option[*widget] {
	return WithBackoff[*widget](func() *rate.Limiter {
		return rate.NewLimiter(rate.Inf, 1)
	})
}

type eventKey struct {
	Type watch.EventType
	Name string
	RV   string
}

func key(ev watch.Event[*widget]) eventKey {
	return eventKey{Type: ev.Type, Name: ev.Object.GetName(), RV: ev.Object.GetResourceVersion()}
}

// receive collects n events or fails the test.
func receive(t *testing.T, w watch.Interface[*widget], n int) []eventKey {
	t.Helper()
	out := make([]eventKey, 0, n)
	for len(out) < n {
		select {
		case ev, ok := <-w.ResultChan():
			if !ok {
				t.Fatalf("ResultChan(): closed after %d of %d events, Err(): %v", len(out), n, w.Err())
			}
			out = append(out, key(ev))
		case <-time.After(time.Second):
			t.Fatalf("ResultChan(): timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

// awaitClose drains the stream until it closes.
func awaitClose(t *testing.T, w watch.Interface[*widget]) {
	t.Helper()
	for {
		select {
		case _, ok := <-w.ResultChan():
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("ResultChan(): timed out waiting for close")
		}
	}
}

func TestListWatchAnnouncesThenWatches(t *testing.T) {
	// Two list pages, then a watch from the final page's resourceVersion.
	var lists, streams int32
	var watchRV atomic.Value

	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			switch atomic.AddInt32(&lists, 1) {
			case 1:
				if got := req.Query.Get("continue"); got != "" {
					t.Errorf("List(...): first page must not carry a continue token, got %q", got)
				}
				return test.NewResponse(http.StatusOK,
					`{"metadata":{"resourceVersion":"9","continue":"tok"},"items":[{"metadata":{"name":"a","resourceVersion":"5"}},{"metadata":{"name":"b","resourceVersion":"7"}}]}`), nil
			default:
				if got := req.Query.Get("continue"); got != "tok" {
					t.Errorf("List(...): want continue token tok, got %q", got)
				}
				return test.NewResponse(http.StatusOK,
					`{"metadata":{"resourceVersion":"10"},"items":[{"metadata":{"name":"c","resourceVersion":"10"}}]}`), nil
			}
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			atomic.AddInt32(&streams, 1)
			watchRV.Store(req.Query.Get("resourceVersion"))
			return test.NewStream(http.StatusOK,
				`{"type":"MODIFIED","object":{"metadata":{"name":"b","resourceVersion":"101"}}}`), nil
		},
	}

	c := newWidgetClient(exec, noBackoff())
	w := c.ListWatch(context.Background(), "ns", ListOptions{Limit: 2})
	defer w.Stop()

	got := receive(t, w, 4)
	want := []eventKey{
		{Type: watch.Added, Name: "a", RV: "5"},
		{Type: watch.Added, Name: "b", RV: "7"},
		{Type: watch.Added, Name: "c", RV: "10"},
		{Type: watch.Modified, Name: "b", RV: "101"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListWatch(...): -want events, +got:\n%s", diff)
	}
	if got := watchRV.Load(); got != "10" {
		t.Errorf("ListWatch(...): want watch to start at resourceVersion 10, got %v", got)
	}

	w.Stop()
	awaitClose(t, w)
	if err := w.Err(); err != nil {
		t.Errorf("Err(): want nil after Stop, got %v", err)
	}
}

func TestListWatchResumesAfterDisconnect(t *testing.T) {
	// The first stream hangs up cleanly after one event. The engine must
	// resume at the delivered event's resourceVersion without re-announcing
	// the collection.
	var lists, streams int32
	var resumeRV atomic.Value

	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			atomic.AddInt32(&lists, 1)
			return test.NewResponse(http.StatusOK,
				`{"metadata":{"resourceVersion":"100"},"items":[{"metadata":{"name":"a","resourceVersion":"100"}}]}`), nil
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			switch atomic.AddInt32(&streams, 1) {
			case 1:
				return &rest.StreamResponse{StatusCode: http.StatusOK, Body: test.NewClosingBody(
					`{"type":"MODIFIED","object":{"metadata":{"name":"a","resourceVersion":"101"}}}`,
				)}, nil
			default:
				resumeRV.Store(req.Query.Get("resourceVersion"))
				return test.NewStream(http.StatusOK), nil
			}
		},
	}

	c := newWidgetClient(exec, noBackoff())
	w := c.ListWatch(context.Background(), "ns", ListOptions{})
	defer w.Stop()

	got := receive(t, w, 2)
	want := []eventKey{
		{Type: watch.Added, Name: "a", RV: "100"},
		{Type: watch.Modified, Name: "a", RV: "101"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListWatch(...): -want events, +got:\n%s", diff)
	}

	// Wait for the reconnect, then confirm it resumed rather than relisted.
	deadline := time.After(time.Second)
	for atomic.LoadInt32(&streams) < 2 {
		select {
		case <-deadline:
			t.Fatal("ListWatch(...): timed out waiting for reconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if got := resumeRV.Load(); got != "101" {
		t.Errorf("ListWatch(...): want resume at resourceVersion 101, got %v", got)
	}
	if got := atomic.LoadInt32(&lists); got != 1 {
		t.Errorf("ListWatch(...): want 1 list, got %d", got)
	}
}

func TestListWatchRelistsOnExpiredToken(t *testing.T) {
	// A 410 error frame invalidates the resume token: the engine relists
	// and announces the full collection again. The error frame itself is
	// not delivered.
	var lists, streams int32
	var relistRV atomic.Value

	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			switch atomic.AddInt32(&lists, 1) {
			case 1:
				return test.NewResponse(http.StatusOK,
					`{"metadata":{"resourceVersion":"100"},"items":[{"metadata":{"name":"a","resourceVersion":"100"}}]}`), nil
			default:
				if got := req.Query.Get("resourceVersion"); got != "" {
					t.Errorf("List(...): relist must not pin a resourceVersion, got %q", got)
				}
				return test.NewResponse(http.StatusOK,
					`{"metadata":{"resourceVersion":"200"},"items":[{"metadata":{"name":"a","resourceVersion":"150"}},{"metadata":{"name":"b","resourceVersion":"180"}}]}`), nil
			}
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			switch atomic.AddInt32(&streams, 1) {
			case 1:
				return test.NewStream(http.StatusOK,
					`{"type":"ERROR","object":{"kind":"Status","apiVersion":"v1","status":"Failure","reason":"Expired","code":410}}`,
				), nil
			default:
				relistRV.Store(req.Query.Get("resourceVersion"))
				return test.NewStream(http.StatusOK), nil
			}
		},
	}

	c := newWidgetClient(exec, noBackoff())
	w := c.ListWatch(context.Background(), "ns", ListOptions{})
	defer w.Stop()

	got := receive(t, w, 3)
	want := []eventKey{
		{Type: watch.Added, Name: "a", RV: "100"},
		{Type: watch.Added, Name: "a", RV: "150"},
		{Type: watch.Added, Name: "b", RV: "180"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListWatch(...): -want events, +got:\n%s", diff)
	}
	if got := relistRV.Load(); got != "200" {
		t.Errorf("ListWatch(...): want watch after relist at resourceVersion 200, got %v", got)
	}
}

func TestListWatchBookmarkAdvancesToken(t *testing.T) {
	// Bookmarks move the resume token without reaching the consumer.
	var streams int32
	var resumeRV atomic.Value

	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			return test.NewResponse(http.StatusOK, `{"metadata":{"resourceVersion":"100"},"items":[]}`), nil
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			switch atomic.AddInt32(&streams, 1) {
			case 1:
				if got := req.Query.Get("allowWatchBookmarks"); got != "true" {
					t.Errorf("Watch(...): want allowWatchBookmarks=true, got %q", got)
				}
				return &rest.StreamResponse{StatusCode: http.StatusOK, Body: test.NewClosingBody(
					`{"type":"BOOKMARK","object":{"metadata":{"resourceVersion":"170"}}}`,
				)}, nil
			default:
				resumeRV.Store(req.Query.Get("resourceVersion"))
				return test.NewStream(http.StatusOK), nil
			}
		},
	}

	c := newWidgetClient(exec, noBackoff())
	w := c.ListWatch(context.Background(), "ns", ListOptions{})
	defer w.Stop()

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&streams) < 2 {
		select {
		case <-deadline:
			t.Fatal("ListWatch(...): timed out waiting for reconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if got := resumeRV.Load(); got != "170" {
		t.Errorf("ListWatch(...): want resume at bookmarked resourceVersion 170, got %v", got)
	}

	select {
	case ev := <-w.ResultChan():
		t.Errorf("ListWatch(...): bookmark must not be delivered, got %+v", ev)
	default:
	}
}

func TestListWatchStopsCleanly(t *testing.T) {
	// Stop ends the stream promptly, closes the connection exactly once,
	// and reports no error.
	body := test.NewBody(
		`{"type":"MODIFIED","object":{"metadata":{"name":"a","resourceVersion":"101"}}}`,
	)
	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			return test.NewResponse(http.StatusOK,
				`{"metadata":{"resourceVersion":"100"},"items":[{"metadata":{"name":"a","resourceVersion":"100"}}]}`), nil
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			return &rest.StreamResponse{StatusCode: http.StatusOK, Body: body}, nil
		},
	}

	c := newWidgetClient(exec, noBackoff())
	w := c.ListWatch(context.Background(), "ns", ListOptions{})

	receive(t, w, 2)
	w.Stop()
	awaitClose(t, w)

	if err := w.Err(); err != nil {
		t.Errorf("Err(): want nil after Stop, got %v", err)
	}
	// The stream watcher owns the body and closes it once.
	deadline := time.After(time.Second)
	for body.Closes() == 0 {
		select {
		case <-deadline:
			t.Fatal("Stop(): timed out waiting for the connection to close")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestListWatchCancelledByContext(t *testing.T) {
	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			return test.NewResponse(http.StatusOK, `{"metadata":{"resourceVersion":"100"},"items":[]}`), nil
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			return test.NewStream(http.StatusOK), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := newWidgetClient(exec, noBackoff())
	w := c.ListWatch(ctx, "ns", ListOptions{})

	cancel()
	awaitClose(t, w)

	if err := w.Err(); err != context.Canceled {
		t.Errorf("Err(): want context.Canceled, got %v", err)
	}
}

func TestListWatchAuthFailureBudget(t *testing.T) {
	// Consecutive authentication failures are retried up to the budget,
	// then terminate the stream with the failure.
	var streams int32
	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			return test.NewResponse(http.StatusOK, `{"metadata":{"resourceVersion":"100"},"items":[]}`), nil
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			atomic.AddInt32(&streams, 1)
			return &rest.StreamResponse{
				StatusCode: http.StatusUnauthorized,
				Body:       test.NewClosingBody(`{"kind":"Status","apiVersion":"v1","status":"Failure","reason":"Unauthorized","code":401}`),
			}, nil
		},
	}

	c := newWidgetClient(exec, noBackoff(), WithAuthRetryLimit[*widget](2))
	w := c.ListWatch(context.Background(), "ns", ListOptions{})

	awaitClose(t, w)

	if err := w.Err(); !apierrors.IsUnauthorized(err) {
		t.Errorf("Err(): want Unauthorized, got %v", err)
	}
	// Two retries after the first failure: three attempts in total.
	if got := atomic.LoadInt32(&streams); got != 3 {
		t.Errorf("ListWatch(...): want 3 watch attempts, got %d", got)
	}
}

func TestListWatchIdleStreamIsCut(t *testing.T) {
	// A stream that stays silent past the idle timeout is dropped and
	// re-established at the last seen resourceVersion.
	var streams int32
	exec := &test.MockExecutor{
		MockExecute: func(_ context.Context, req rest.Request) (*rest.Response, error) {
			return test.NewResponse(http.StatusOK, `{"metadata":{"resourceVersion":"100"},"items":[]}`), nil
		},
		MockOpenStream: func(_ context.Context, req rest.Request) (*rest.StreamResponse, error) {
			atomic.AddInt32(&streams, 1)
			return test.NewStream(http.StatusOK), nil
		},
	}

	c := newWidgetClient(exec, noBackoff(), WithIdleTimeout[*widget](20*time.Millisecond))
	w := c.ListWatch(context.Background(), "ns", ListOptions{})
	defer w.Stop()

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&streams) < 2 {
		select {
		case <-deadline:
			t.Fatal("ListWatch(...): timed out waiting for the idle stream to be cut")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
