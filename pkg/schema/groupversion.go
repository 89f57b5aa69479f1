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

// Package schema holds the value types that identify API groups, kinds and
// resource collections. They are plain comparable values; construct them once
// and share them freely.
package schema

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// GroupVersion identifies an API group at a particular version. The legacy
// core group is the empty string.
type GroupVersion struct {
	Group   string
	Version string
}

// ParseGroupVersion parses a "group/version" string. A string with no slash
// is a version in the core group.
func ParseGroupVersion(gv string) (GroupVersion, error) {
	switch strings.Count(gv, "/") {
	case 0:
		return GroupVersion{Version: gv}, nil
	case 1:
		i := strings.IndexByte(gv, '/')
		return GroupVersion{Group: gv[:i], Version: gv[i+1:]}, nil
	default:
		return GroupVersion{}, errors.Errorf("unexpected GroupVersion string: %q", gv)
	}
}

// String renders "group/version", or just "version" for the core group.
func (gv GroupVersion) String() string {
	if gv.Group == "" {
		return gv.Version
	}
	return gv.Group + "/" + gv.Version
}

// Empty reports whether both group and version are unset.
func (gv GroupVersion) Empty() bool {
	return gv == GroupVersion{}
}

// APIPrefix is the first path segment requests for this group are served
// under: the core group lives under /api, everything else under /apis.
func (gv GroupVersion) APIPrefix() string {
	if gv.Group == "" {
		return "api"
	}
	return "apis"
}

// WithKind binds a kind name to this group version.
func (gv GroupVersion) WithKind(kind string) GroupVersionKind {
	return GroupVersionKind{Group: gv.Group, Version: gv.Version, Kind: kind}
}

// WithResource binds a plural resource name to this group version.
func (gv GroupVersion) WithResource(resource string) GroupVersionResource {
	return GroupVersionResource{Group: gv.Group, Version: gv.Version, Resource: resource}
}

// GroupVersionKind unambiguously identifies an object kind.
type GroupVersionKind struct {
	Group   string
	Version string
	Kind    string
}

// GroupVersion returns the group and version parts of the identifier.
func (gvk GroupVersionKind) GroupVersion() GroupVersion {
	return GroupVersion{Group: gvk.Group, Version: gvk.Version}
}

// Empty reports whether all fields are unset.
func (gvk GroupVersionKind) Empty() bool {
	return gvk == GroupVersionKind{}
}

func (gvk GroupVersionKind) String() string {
	return fmt.Sprintf("%s/%s, Kind=%s", gvk.Group, gvk.Version, gvk.Kind)
}

// GroupVersionResource unambiguously identifies a resource collection.
type GroupVersionResource struct {
	Group    string
	Version  string
	Resource string
}

// GroupVersion returns the group and version parts of the identifier.
func (gvr GroupVersionResource) GroupVersion() GroupVersion {
	return GroupVersion{Group: gvr.Group, Version: gvr.Version}
}

// Empty reports whether all fields are unset.
func (gvr GroupVersionResource) Empty() bool {
	return gvr == GroupVersionResource{}
}

func (gvr GroupVersionResource) String() string {
	return strings.Join([]string{gvr.Group, gvr.Version, gvr.Resource}, "/")
}

// Resource names a collection on the server together with its scope. It is
// the identity a client is bound to: immutable after construction and safe to
// copy and share by value.
type Resource struct {
	Group      string
	Version    string
	Resource   string
	Namespaced bool
}

// GroupVersionResource returns the identity without its scope.
func (r Resource) GroupVersionResource() GroupVersionResource {
	return GroupVersionResource{Group: r.Group, Version: r.Version, Resource: r.Resource}
}

// GroupVersion returns the group and version parts of the identity.
func (r Resource) GroupVersion() GroupVersion {
	return GroupVersion{Group: r.Group, Version: r.Version}
}

func (r Resource) String() string {
	return r.GroupVersionResource().String()
}
