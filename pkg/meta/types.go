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

// Package meta holds the wire-level metadata shared by every API object:
// type identity, object metadata, list metadata and the Status payload the
// server reports failures with.
package meta

// TypeMeta identifies the kind of an object on the wire. Embed it in typed
// objects with an inline JSON tag.
type TypeMeta struct {
	Kind       string `json:"kind,omitempty"`
	APIVersion string `json:"apiVersion,omitempty"`
}

// GetKind returns the object kind.
func (t *TypeMeta) GetKind() string { return t.Kind }

// GetAPIVersion returns the object's group/version string.
func (t *TypeMeta) GetAPIVersion() string { return t.APIVersion }

// ObjectMeta is the metadata every persisted object carries. Typed objects
// embed it under the "metadata" key; the engine reads and writes it through
// the Object interface.
type ObjectMeta struct {
	Name            string            `json:"name,omitempty"`
	GenerateName    string            `json:"generateName,omitempty"`
	Namespace       string            `json:"namespace,omitempty"`
	UID             string            `json:"uid,omitempty"`
	ResourceVersion string            `json:"resourceVersion,omitempty"`
	Generation      int64             `json:"generation,omitempty"`
	CreationTimestamp string          `json:"creationTimestamp,omitempty"`
	DeletionTimestamp *string         `json:"deletionTimestamp,omitempty"`
	Labels          map[string]string `json:"labels,omitempty"`
	Annotations     map[string]string `json:"annotations,omitempty"`
	Finalizers      []string          `json:"finalizers,omitempty"`
}

// GetName returns the object name.
func (m *ObjectMeta) GetName() string { return m.Name }

// SetName sets the object name.
func (m *ObjectMeta) SetName(name string) { m.Name = name }

// GetNamespace returns the object namespace, empty for cluster-scoped objects.
func (m *ObjectMeta) GetNamespace() string { return m.Namespace }

// SetNamespace sets the object namespace.
func (m *ObjectMeta) SetNamespace(ns string) { m.Namespace = ns }

// GetUID returns the server-assigned unique identifier.
func (m *ObjectMeta) GetUID() string { return m.UID }

// SetUID sets the unique identifier.
func (m *ObjectMeta) SetUID(uid string) { m.UID = uid }

// GetResourceVersion returns the opaque version token. Callers must not
// parse it; it is only compared for equality or passed back verbatim.
func (m *ObjectMeta) GetResourceVersion() string { return m.ResourceVersion }

// SetResourceVersion sets the opaque version token.
func (m *ObjectMeta) SetResourceVersion(rv string) { m.ResourceVersion = rv }

// GetLabels returns the object's labels.
func (m *ObjectMeta) GetLabels() map[string]string { return m.Labels }

// SetLabels replaces the object's labels.
func (m *ObjectMeta) SetLabels(labels map[string]string) { m.Labels = labels }

// GetAnnotations returns the object's annotations.
func (m *ObjectMeta) GetAnnotations() map[string]string { return m.Annotations }

// SetAnnotations replaces the object's annotations.
func (m *ObjectMeta) SetAnnotations(ann map[string]string) { m.Annotations = ann }

// ListMeta is the metadata of a list response. ResourceVersion pins the
// point in history the list was served at; Continue, when non-empty, resumes
// pagination.
type ListMeta struct {
	ResourceVersion    string `json:"resourceVersion,omitempty"`
	Continue           string `json:"continue,omitempty"`
	RemainingItemCount *int64 `json:"remainingItemCount,omitempty"`
}

// Object is the read/write surface the generic client and the watch engine
// need from any object representation, typed or unstructured.
type Object interface {
	GetName() string
	SetName(string)
	GetNamespace() string
	SetNamespace(string)
	GetUID() string
	GetResourceVersion() string
	SetResourceVersion(string)
	GetLabels() map[string]string
	SetLabels(map[string]string)
	GetAnnotations() map[string]string
	SetAnnotations(map[string]string)
}
