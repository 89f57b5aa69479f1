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

// Package codec converts objects between their wire bytes and an in-memory
// representation. The typed codec binds a compiled schema; the unstructured
// codec accepts anything and keeps what it got. The two are different
// contracts, not two implementations of one: a typed round trip drops
// undeclared fields, an unstructured one never loses a byte.
package codec

import (
	"encoding/json"

	"github.com/kubeworks/clientkit/pkg/apierrors"
	"github.com/kubeworks/clientkit/pkg/meta"
	"github.com/kubeworks/clientkit/pkg/unstructured"
)

// A Codec decodes wire bytes into T and encodes T back to wire bytes.
type Codec[T meta.Object] interface {
	Decode(data []byte) (T, error)
	Encode(obj T) ([]byte, error)
}

// objectPtr constrains PT to be a pointer to T that carries the metadata
// accessor surface, so the codec can allocate fresh objects.
type objectPtr[T any] interface {
	*T
	meta.Object
}

type typed[T any, PT objectPtr[T]] struct{}

// Typed returns the codec for a compiled schema T. Wire fields map to struct
// fields through standard JSON tags; unknown wire fields are ignored, not an
// error.
func Typed[T any, PT objectPtr[T]]() Codec[PT] {
	return typed[T, PT]{}
}

func (typed[T, PT]) Decode(data []byte) (PT, error) {
	obj := PT(new(T))
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, apierrors.NewDecodeError(err, data)
	}
	return obj, nil
}

func (typed[T, PT]) Encode(obj PT) ([]byte, error) {
	return json.Marshal(obj)
}

type dynamic struct{}

// Unstructured returns the codec for schema-less objects. Decoding preserves
// every field in wire order.
func Unstructured() Codec[*unstructured.Unstructured] {
	return dynamic{}
}

func (dynamic) Decode(data []byte) (*unstructured.Unstructured, error) {
	u := unstructured.New()
	if err := u.UnmarshalJSON(data); err != nil {
		return nil, apierrors.NewDecodeError(err, data)
	}
	return u, nil
}

func (dynamic) Encode(obj *unstructured.Unstructured) ([]byte, error) {
	return obj.MarshalJSON()
}
