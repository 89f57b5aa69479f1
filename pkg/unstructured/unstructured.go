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

// Package unstructured implements the dynamic object representation: an
// ordered key/value tree that can hold any wire payload, including kinds the
// compiled schema catalogue does not know. Field order survives a decode and
// re-encode round trip, so a generic proxy never reorders what it forwards.
package unstructured

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// A field value is one of: nil, bool, json.Number, string, []any or *Object.
// Callers constructing objects by hand may also store Go numeric types;
// the encoder accepts them.

// Field is a single key/value entry of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a JSON object that preserves the order its fields were set in.
// Lookup is linear; objects on this API are small.
type Object struct {
	fields []Field
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{}
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	for _, f := range o.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set stores value under key, keeping the key's existing position if it is
// already present and appending otherwise.
func (o *Object) Set(key string, value any) {
	for i := range o.fields {
		if o.fields[i].Key == key {
			o.fields[i].Value = value
			return
		}
	}
	o.fields = append(o.fields, Field{Key: key, Value: value})
}

// Delete removes key, preserving the order of the remaining fields.
func (o *Object) Delete(key string) {
	for i := range o.fields {
		if o.fields[i].Key == key {
			o.fields = append(o.fields[:i], o.fields[i+1:]...)
			return
		}
	}
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

// Fields returns the fields in order. The slice is shared; treat it as
// read-only.
func (o *Object) Fields() []Field {
	if o == nil {
		return nil
	}
	return o.fields
}

// DeepCopy returns a full copy of the object.
func (o *Object) DeepCopy() *Object {
	if o == nil {
		return nil
	}
	out := &Object{fields: make([]Field, len(o.fields))}
	for i, f := range o.fields {
		out.fields[i] = Field{Key: f.Key, Value: deepCopyValue(f.Value)}
	}
	return out
}

func deepCopyValue(v any) any {
	switch v := v.(type) {
	case *Object:
		return v.DeepCopy()
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = deepCopyValue(v[i])
		}
		return out
	default:
		// Scalars are immutable.
		return v
	}
}

// Unstructured is an object of unknown schema. It satisfies the same
// metadata surface as typed objects, so the generic client and the watch
// engine treat the two uniformly.
type Unstructured struct {
	Object *Object
}

// New returns an empty Unstructured.
func New() *Unstructured {
	return &Unstructured{Object: NewObject()}
}

// DeepCopy returns a full copy.
func (u *Unstructured) DeepCopy() *Unstructured {
	if u == nil {
		return nil
	}
	return &Unstructured{Object: u.Object.DeepCopy()}
}

// NestedField returns the value at the given path of keys.
func (u *Unstructured) NestedField(path ...string) (any, bool) {
	if u == nil || len(path) == 0 {
		return nil, false
	}
	obj := u.Object
	for _, key := range path[:len(path)-1] {
		v, ok := obj.Get(key)
		if !ok {
			return nil, false
		}
		obj, ok = v.(*Object)
		if !ok {
			return nil, false
		}
	}
	return obj.Get(path[len(path)-1])
}

// NestedString returns the string at the given path, or "" when the path is
// absent or not a string.
func (u *Unstructured) NestedString(path ...string) string {
	v, ok := u.NestedField(path...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// SetNestedField stores value at the given path, creating intermediate
// objects as needed. It fails if an intermediate path element holds a
// non-object value.
func (u *Unstructured) SetNestedField(value any, path ...string) error {
	if len(path) == 0 {
		return errors.New("path must not be empty")
	}
	if u.Object == nil {
		u.Object = NewObject()
	}
	obj := u.Object
	for _, key := range path[:len(path)-1] {
		v, ok := obj.Get(key)
		if !ok {
			next := NewObject()
			obj.Set(key, next)
			obj = next
			continue
		}
		next, ok := v.(*Object)
		if !ok {
			return errors.Errorf("field %q is not an object", key)
		}
		obj = next
	}
	obj.Set(path[len(path)-1], value)
	return nil
}

// removeNestedField deletes the value at the given path if present.
func (u *Unstructured) removeNestedField(path ...string) {
	if u == nil || u.Object == nil || len(path) == 0 {
		return
	}
	obj := u.Object
	for _, key := range path[:len(path)-1] {
		v, ok := obj.Get(key)
		if !ok {
			return
		}
		obj, ok = v.(*Object)
		if !ok {
			return
		}
	}
	obj.Delete(path[len(path)-1])
}

// GetAPIVersion returns the object's group/version string.
func (u *Unstructured) GetAPIVersion() string { return u.NestedString("apiVersion") }

// SetAPIVersion sets the object's group/version string.
func (u *Unstructured) SetAPIVersion(v string) { _ = u.SetNestedField(v, "apiVersion") }

// GetKind returns the object kind.
func (u *Unstructured) GetKind() string { return u.NestedString("kind") }

// SetKind sets the object kind.
func (u *Unstructured) SetKind(k string) { _ = u.SetNestedField(k, "kind") }

// GetName returns metadata.name.
func (u *Unstructured) GetName() string { return u.NestedString("metadata", "name") }

// SetName sets metadata.name.
func (u *Unstructured) SetName(name string) { _ = u.SetNestedField(name, "metadata", "name") }

// GetNamespace returns metadata.namespace.
func (u *Unstructured) GetNamespace() string { return u.NestedString("metadata", "namespace") }

// SetNamespace sets metadata.namespace.
func (u *Unstructured) SetNamespace(ns string) { _ = u.SetNestedField(ns, "metadata", "namespace") }

// GetUID returns metadata.uid.
func (u *Unstructured) GetUID() string { return u.NestedString("metadata", "uid") }

// GetResourceVersion returns the opaque metadata.resourceVersion token.
func (u *Unstructured) GetResourceVersion() string {
	return u.NestedString("metadata", "resourceVersion")
}

// SetResourceVersion sets metadata.resourceVersion verbatim.
func (u *Unstructured) SetResourceVersion(rv string) {
	_ = u.SetNestedField(rv, "metadata", "resourceVersion")
}

// GetLabels returns metadata.labels as a plain map. Insertion order of
// labels carries no meaning.
func (u *Unstructured) GetLabels() map[string]string {
	return u.nestedStringMap("metadata", "labels")
}

// SetLabels replaces metadata.labels. Keys are written sorted so encoding is
// deterministic.
func (u *Unstructured) SetLabels(labels map[string]string) {
	u.setNestedStringMap(labels, "metadata", "labels")
}

// GetAnnotations returns metadata.annotations as a plain map.
func (u *Unstructured) GetAnnotations() map[string]string {
	return u.nestedStringMap("metadata", "annotations")
}

// SetAnnotations replaces metadata.annotations.
func (u *Unstructured) SetAnnotations(ann map[string]string) {
	u.setNestedStringMap(ann, "metadata", "annotations")
}

func (u *Unstructured) nestedStringMap(path ...string) map[string]string {
	v, ok := u.NestedField(path...)
	if !ok {
		return nil
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil
	}
	out := make(map[string]string, obj.Len())
	for _, f := range obj.Fields() {
		if s, ok := f.Value.(string); ok {
			out[f.Key] = s
		}
	}
	return out
}

func (u *Unstructured) setNestedStringMap(m map[string]string, path ...string) {
	if m == nil {
		u.removeNestedField(path...)
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj := NewObject()
	for _, k := range keys {
		obj.Set(k, m[k])
	}
	_ = u.SetNestedField(obj, path...)
}

var (
	_ json.Marshaler   = (*Unstructured)(nil)
	_ json.Unmarshaler = (*Unstructured)(nil)
)
