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

package codec

import (
	"sync"

	"github.com/kubeworks/clientkit/pkg/meta"
	"github.com/kubeworks/clientkit/pkg/schema"
)

// A Registry is the schema catalogue: it maps resource identities to their
// typed codecs. Resources with no entry fall back to the unstructured codec;
// Registered tells callers which side of that line a resource is on.
type Registry struct {
	mu     sync.RWMutex
	codecs map[schema.GroupVersionResource]any
}

// NewRegistry returns an empty catalogue.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[schema.GroupVersionResource]any)}
}

// Register binds a typed codec to a resource identity, replacing any
// previous entry.
func Register[T meta.Object](r *Registry, gvr schema.GroupVersionResource, c Codec[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[gvr] = c
}

// Lookup returns the codec registered for gvr if it decodes into T.
func Lookup[T meta.Object](r *Registry, gvr schema.GroupVersionResource) (Codec[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[gvr].(Codec[T])
	return c, ok
}

// Registered reports whether a typed codec exists for gvr. When it does not,
// callers use the Unstructured codec.
func (r *Registry) Registered(gvr schema.GroupVersionResource) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.codecs[gvr]
	return ok
}
