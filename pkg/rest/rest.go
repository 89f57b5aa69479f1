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

// Package rest defines the request executor contract the client depends on
// and the request-shaping helpers shared by every operation. The library
// never talks to a concrete transport directly; anything that can perform an
// HTTP-like exchange satisfies Executor.
package rest

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/kubeworks/clientkit/pkg/schema"
)

// Content types the API speaks.
const (
	ContentTypeJSON           = "application/json"
	ContentTypeJSONPatch      = "application/json-patch+json"
	ContentTypeMergePatch     = "application/merge-patch+json"
	ContentTypeStrategicPatch = "application/strategic-merge-patch+json"
)

// Request describes one exchange. Body is nil for reads.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Response is a completed non-streaming exchange. Non-2xx statuses are
// returned here, not as errors; classification is the caller's job.
type Response struct {
	StatusCode int
	Body       []byte
}

// StreamResponse is an open streaming exchange. Body yields chunks lazily;
// closing it from any goroutine aborts the stream.
type StreamResponse struct {
	StatusCode int
	Body       io.ReadCloser
}

// An Executor performs request/response and streaming exchanges. Every call
// is independent: implementations must support concurrent calls without
// sharing mutable per-call state.
type Executor interface {
	// Execute performs a single request/response exchange. It returns an
	// error only for transport-level failures; HTTP-level failures come back
	// as the response status.
	Execute(ctx context.Context, req Request) (*Response, error)

	// OpenStream starts a streaming exchange. On success the caller owns the
	// response body and must close it exactly once.
	OpenStream(ctx context.Context, req Request) (*StreamResponse, error)
}

// Path builds the request path for a resource collection, an object in it,
// or an object's subresource. Empty segments are skipped, so the same call
// shape serves cluster- and namespace-scoped resources.
//
//	/apis/{group}/{version}/namespaces/{ns}/{resource}/{name}/{subresource}
//
// The core group drops the group segment and is served under /api.
func Path(r schema.Resource, namespace, name, subresource string) string {
	gv := r.GroupVersion()
	segments := make([]string, 0, 8)
	segments = append(segments, "", gv.APIPrefix())
	if gv.Group != "" {
		segments = append(segments, gv.Group)
	}
	segments = append(segments, gv.Version)
	if r.Namespaced && namespace != "" {
		segments = append(segments, "namespaces", url.PathEscape(namespace))
	}
	segments = append(segments, r.Resource)
	if name != "" {
		segments = append(segments, url.PathEscape(name))
	}
	if subresource != "" {
		segments = append(segments, subresource)
	}
	return strings.Join(segments, "/")
}
