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

// Package client implements the generic resource client: CRUD, list and
// watch operations bound to one resource identity and one object
// representation. The same code path serves compiled schemas and
// unstructured objects; only the codec differs.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/kubeworks/clientkit/pkg/apierrors"
	"github.com/kubeworks/clientkit/pkg/codec"
	"github.com/kubeworks/clientkit/pkg/logging"
	"github.com/kubeworks/clientkit/pkg/meta"
	"github.com/kubeworks/clientkit/pkg/metrics"
	"github.com/kubeworks/clientkit/pkg/rest"
	"github.com/kubeworks/clientkit/pkg/schema"
	"github.com/kubeworks/clientkit/pkg/unstructured"
	"github.com/kubeworks/clientkit/pkg/watch"
)

const (
	errMissingName      = "object name must not be empty"
	errMissingNamespace = "namespace must not be empty for a namespaced resource"
	errExecuteRequest   = "cannot execute request"
	errOpenStream       = "cannot open watch stream"
	errEncodeObject     = "cannot encode object"
)

// Defaults for the watch engine knobs; all are configuration, not contract.
const (
	// DefaultIdleTimeout is how long a watch stream may stay silent before
	// it is re-established at the last seen resourceVersion.
	DefaultIdleTimeout = 5 * time.Minute

	// DefaultAuthRetryLimit is how many consecutive Unauthorized or
	// Forbidden responses the watch engine tolerates before terminating.
	DefaultAuthRetryLimit = 3
)

// List is one page, or a drained sequence of pages, of a collection.
type List[T any] struct {
	Metadata meta.ListMeta
	Items    []T
}

// Client performs operations on one resource collection using one object
// representation T. Clients are cheap, immutable after construction and safe
// for concurrent use; every call is an independent exchange on the executor.
type Client[T meta.Object] struct {
	exec     rest.Executor
	resource schema.Resource
	codec    codec.Codec[T]

	log     logging.Logger
	metrics metrics.Recorder

	idleTimeout time.Duration
	authRetries int
	newBackoff  func() *rate.Limiter
}

// An Option configures a Client.
type Option[T meta.Object] func(*Client[T])

// WithLogger sets the logger the client and its watch engine emit through.
func WithLogger[T meta.Object](log logging.Logger) Option[T] {
	return func(c *Client[T]) {
		c.log = log
	}
}

// WithMetrics sets the recorder the watch engine reports to.
func WithMetrics[T meta.Object](r metrics.Recorder) Option[T] {
	return func(c *Client[T]) {
		c.metrics = r
	}
}

// WithIdleTimeout sets how long a watch stream may stay silent, bookmarks
// included, before it is treated as disconnected.
func WithIdleTimeout[T meta.Object](d time.Duration) Option[T] {
	return func(c *Client[T]) {
		c.idleTimeout = d
	}
}

// WithAuthRetryLimit bounds consecutive authentication failures the watch
// engine retries before terminating.
func WithAuthRetryLimit[T meta.Object](n int) Option[T] {
	return func(c *Client[T]) {
		c.authRetries = n
	}
}

// WithBackoff sets the pacing of watch re-establishment. The constructor is
// called once per engine so concurrent engines do not share limiter state.
func WithBackoff[T meta.Object](newLimiter func() *rate.Limiter) Option[T] {
	return func(c *Client[T]) {
		c.newBackoff = newLimiter
	}
}

// New returns a client for one resource identity bound to the codec for T.
func New[T meta.Object](exec rest.Executor, r schema.Resource, c codec.Codec[T], opts ...Option[T]) *Client[T] {
	cl := &Client[T]{
		exec:        exec,
		resource:    r,
		codec:       c,
		log:         logging.NewNopLogger(),
		metrics:     metrics.NewNopRecorder(),
		idleTimeout: DefaultIdleTimeout,
		authRetries: DefaultAuthRetryLimit,
		newBackoff: func() *rate.Limiter {
			return rate.NewLimiter(rate.Every(time.Second), 1)
		},
	}
	for _, o := range opts {
		o(cl)
	}
	cl.log = cl.log.WithValues("resource", r.String())
	return cl
}

// NewDynamic returns a client that represents objects as unstructured
// values. Use it for resource kinds the schema catalogue does not know.
func NewDynamic(exec rest.Executor, r schema.Resource, opts ...Option[*unstructured.Unstructured]) *Client[*unstructured.Unstructured] {
	return New(exec, r, codec.Unstructured(), opts...)
}

// Resource returns the identity this client is bound to.
func (c *Client[T]) Resource() schema.Resource {
	return c.resource
}

// Get fetches a single object by name.
func (c *Client[T]) Get(ctx context.Context, namespace, name string, opts GetOptions) (T, error) {
	var zero T
	if err := c.checkScope(namespace, name, true); err != nil {
		return zero, err
	}
	body, err := c.do(ctx, http.MethodGet, namespace, name, "", rest.Request{Query: opts.query()})
	if err != nil {
		return zero, err
	}
	return c.codec.Decode(body)
}

// Create persists a new object. The server assigns uid and resourceVersion;
// an existing object with the same name fails as a conflict.
func (c *Client[T]) Create(ctx context.Context, obj T, opts CreateOptions) (T, error) {
	var zero T
	if err := c.checkScope(obj.GetNamespace(), "", false); err != nil {
		return zero, err
	}
	data, err := c.codec.Encode(obj)
	if err != nil {
		return zero, errors.Wrap(err, errEncodeObject)
	}
	body, err := c.do(ctx, http.MethodPost, obj.GetNamespace(), "", "", rest.Request{
		Query: opts.query(), Body: data, ContentType: rest.ContentTypeJSON,
	})
	if err != nil {
		return zero, err
	}
	return c.codec.Decode(body)
}

// Update replaces an existing object. The object must carry the
// resourceVersion the caller last observed; a stale version fails as a
// conflict and is never retried here — re-get and try again.
func (c *Client[T]) Update(ctx context.Context, obj T, opts UpdateOptions) (T, error) {
	var zero T
	if err := c.checkScope(obj.GetNamespace(), obj.GetName(), true); err != nil {
		return zero, err
	}
	data, err := c.codec.Encode(obj)
	if err != nil {
		return zero, errors.Wrap(err, errEncodeObject)
	}
	body, err := c.do(ctx, http.MethodPut, obj.GetNamespace(), obj.GetName(), "", rest.Request{
		Query: opts.query(), Body: data, ContentType: rest.ContentTypeJSON,
	})
	if err != nil {
		return zero, err
	}
	return c.codec.Decode(body)
}

// Patch applies a partial update with the given patch payload.
func (c *Client[T]) Patch(ctx context.Context, namespace, name string, patch Patch, opts PatchOptions) (T, error) {
	var zero T
	if err := c.checkScope(namespace, name, true); err != nil {
		return zero, err
	}
	body, err := c.do(ctx, http.MethodPatch, namespace, name, "", rest.Request{
		Query: opts.query(), Body: patch.Data, ContentType: patch.Type.ContentType(),
	})
	if err != nil {
		return zero, err
	}
	return c.codec.Decode(body)
}

// GetSubresource fetches a named subresource of an object, for example
// the status of a widget.
func (c *Client[T]) GetSubresource(ctx context.Context, namespace, name, subresource string, opts GetOptions) (T, error) {
	var zero T
	if err := c.checkScope(namespace, name, true); err != nil {
		return zero, err
	}
	body, err := c.do(ctx, http.MethodGet, namespace, name, subresource, rest.Request{Query: opts.query()})
	if err != nil {
		return zero, err
	}
	return c.codec.Decode(body)
}

// UpdateSubresource replaces a named subresource of an object. The main
// resource body is sent; the server applies only the subresource's part.
func (c *Client[T]) UpdateSubresource(ctx context.Context, obj T, subresource string, opts UpdateOptions) (T, error) {
	var zero T
	if err := c.checkScope(obj.GetNamespace(), obj.GetName(), true); err != nil {
		return zero, err
	}
	data, err := c.codec.Encode(obj)
	if err != nil {
		return zero, errors.Wrap(err, errEncodeObject)
	}
	body, err := c.do(ctx, http.MethodPut, obj.GetNamespace(), obj.GetName(), subresource, rest.Request{
		Query: opts.query(), Body: data, ContentType: rest.ContentTypeJSON,
	})
	if err != nil {
		return zero, err
	}
	return c.codec.Decode(body)
}

// Delete removes an object by name. Deleting an absent object surfaces
// NotFound; the caller decides whether that is acceptable.
func (c *Client[T]) Delete(ctx context.Context, namespace, name string, opts DeleteOptions) error {
	if err := c.checkScope(namespace, name, true); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, namespace, name, "", rest.Request{Query: opts.query()})
	return err
}

// List fetches a single page of the collection. Loop on
// Metadata.Continue to drain all pages, or use ListAll.
func (c *Client[T]) List(ctx context.Context, namespace string, opts ListOptions) (*List[T], error) {
	body, err := c.do(ctx, http.MethodGet, namespace, "", "", rest.Request{Query: opts.query(false)})
	if err != nil {
		return nil, err
	}
	return c.decodeList(body)
}

// ListAll drains every page of the collection, concatenating items in
// server order. The returned metadata is the final page's, whose
// resourceVersion seeds a gap-free watch.
func (c *Client[T]) ListAll(ctx context.Context, namespace string, opts ListOptions) (*List[T], error) {
	out := &List[T]{}
	for {
		page, err := c.List(ctx, namespace, opts)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, page.Items...)
		out.Metadata = page.Metadata
		if page.Metadata.Continue == "" {
			return out, nil
		}
		opts.Continue = page.Metadata.Continue
	}
}

// Watch opens a single watch stream at opts.ResourceVersion. The stream
// ends on the first disconnect; for a failure-resilient stream use
// ListWatch.
func (c *Client[T]) Watch(ctx context.Context, namespace string, opts ListOptions) (watch.Interface[T], error) {
	req := rest.Request{
		Method: http.MethodGet,
		Path:   rest.Path(c.resource, namespace, "", ""),
		Query:  opts.query(true),
	}
	resp, err := c.exec.OpenStream(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, errOpenStream)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, apierrors.FromResponse(resp.StatusCode, body)
	}
	return watch.NewStreamWatcher(resp.Body, c.decodeEvent, watch.WithStreamLogger[T](c.log)), nil
}

func (c *Client[T]) checkScope(namespace, name string, needName bool) error {
	if needName && name == "" {
		return errors.New(errMissingName)
	}
	if c.resource.Namespaced && namespace == "" {
		return errors.New(errMissingNamespace)
	}
	return nil
}

// do performs one exchange and returns the response body, converting non-2xx
// statuses into typed API errors. Single-shot operations never retry; retry
// semantics belong to the caller.
func (c *Client[T]) do(ctx context.Context, method, namespace, name, subresource string, req rest.Request) ([]byte, error) {
	req.Method = method
	req.Path = rest.Path(c.resource, namespace, name, subresource)
	resp, err := c.exec.Execute(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, errExecuteRequest)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierrors.FromResponse(resp.StatusCode, resp.Body)
	}
	return resp.Body, nil
}

type listEnvelope struct {
	Metadata meta.ListMeta     `json:"metadata"`
	Items    []json.RawMessage `json:"items"`
}

func (c *Client[T]) decodeList(body []byte) (*List[T], error) {
	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apierrors.NewDecodeError(err, body)
	}
	out := &List[T]{Metadata: env.Metadata, Items: make([]T, 0, len(env.Items))}
	for _, raw := range env.Items {
		obj, err := c.codec.Decode(raw)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, obj)
	}
	return out, nil
}

type rawEvent struct {
	Type   string          `json:"type"`
	Object json.RawMessage `json:"object"`
}

func (c *Client[T]) decodeEvent(frame []byte) (watch.Event[T], error) {
	var raw rawEvent
	if err := json.Unmarshal(frame, &raw); err != nil {
		return watch.Event[T]{}, apierrors.NewDecodeError(err, frame)
	}
	if watch.EventType(raw.Type) == watch.Error {
		var status meta.Status
		if err := json.Unmarshal(raw.Object, &status); err != nil {
			return watch.Event[T]{}, apierrors.NewDecodeError(err, frame)
		}
		return watch.Event[T]{Type: watch.Error, Status: &status}, nil
	}
	obj, err := c.codec.Decode(raw.Object)
	if err != nil {
		return watch.Event[T]{}, err
	}
	return watch.Event[T]{Type: watch.EventType(raw.Type), Object: obj}, nil
}
