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

// Package test provides fakes for testing code built on clientkit.
package test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kubeworks/clientkit/pkg/rest"
)

// MockExecuteFn mocks the Execute method of an Executor.
type MockExecuteFn func(ctx context.Context, req rest.Request) (*rest.Response, error)

// MockOpenStreamFn mocks the OpenStream method of an Executor.
type MockOpenStreamFn func(ctx context.Context, req rest.Request) (*rest.StreamResponse, error)

// MockExecutor is a mock Executor for testing.
type MockExecutor struct {
	MockExecute    MockExecuteFn
	MockOpenStream MockOpenStreamFn
}

// Execute calls the MockExecute function.
func (e *MockExecutor) Execute(ctx context.Context, req rest.Request) (*rest.Response, error) {
	if e.MockExecute != nil {
		return e.MockExecute(ctx, req)
	}
	return &rest.Response{StatusCode: http.StatusOK}, nil
}

// OpenStream calls the MockOpenStream function.
func (e *MockExecutor) OpenStream(ctx context.Context, req rest.Request) (*rest.StreamResponse, error) {
	if e.MockOpenStream != nil {
		return e.MockOpenStream(ctx, req)
	}
	return &rest.StreamResponse{StatusCode: http.StatusOK, Body: NewClosingBody()}, nil
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// WithMockExecute adds a MockExecute function to the MockExecutor.
func WithMockExecute(fn MockExecuteFn) func(*MockExecutor) {
	return func(e *MockExecutor) {
		e.MockExecute = fn
	}
}

// WithMockOpenStream adds a MockOpenStream function to the MockExecutor.
func WithMockOpenStream(fn MockOpenStreamFn) func(*MockExecutor) {
	return func(e *MockExecutor) {
		e.MockOpenStream = fn
	}
}

// NewResponse creates a Response with the supplied status code and body.
func NewResponse(code int, body string) *rest.Response {
	return &rest.Response{StatusCode: code, Body: []byte(body)}
}

// NewStream creates a StreamResponse whose body yields the supplied
// newline-delimited frames, then stays open until closed.
func NewStream(code int, frames ...string) *rest.StreamResponse {
	return &rest.StreamResponse{StatusCode: code, Body: NewBody(frames...)}
}

// Body is a scripted stream body. It yields its frames one line at a
// time, then either blocks like a quiet live connection or reports end
// of stream, and counts how many times it was closed.
type Body struct {
	r      io.Reader
	hold   bool
	closed chan struct{}
	once   sync.Once
	closes int32
}

// NewBody creates a Body that blocks after its last frame until closed.
func NewBody(frames ...string) *Body {
	return newBody(true, frames)
}

// NewClosingBody creates a Body that reports end of stream after its
// last frame, like a server that hung up cleanly.
func NewClosingBody(frames ...string) *Body {
	return newBody(false, frames)
}

func newBody(hold bool, frames []string) *Body {
	var sb strings.Builder
	for _, f := range frames {
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	return &Body{r: strings.NewReader(sb.String()), hold: hold, closed: make(chan struct{})}
}

// Read yields scripted frames, then blocks until Close if the body holds.
func (b *Body) Read(p []byte) (int, error) {
	select {
	case <-b.closed:
		return 0, io.EOF
	default:
	}
	n, err := b.r.Read(p)
	if err == io.EOF && b.hold && n == 0 {
		<-b.closed
		return 0, io.EOF
	}
	return n, err
}

// Close releases any blocked Read and counts the call.
func (b *Body) Close() error {
	atomic.AddInt32(&b.closes, 1)
	b.once.Do(func() { close(b.closed) })
	return nil
}

// Closes reports how many times Close was called.
func (b *Body) Closes() int {
	return int(atomic.LoadInt32(&b.closes))
}
