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

package rest

import (
	"testing"

	"github.com/kubeworks/clientkit/pkg/schema"
)

func TestPath(t *testing.T) {
	services := schema.Resource{Version: "v1", Resource: "services", Namespaced: true}
	clusterroles := schema.Resource{
		Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterroles",
	}

	cases := map[string]struct {
		reason      string
		resource    schema.Resource
		namespace   string
		name        string
		subresource string
		want        string
	}{
		"CoreGroupNamespacedObject": {
			reason:    "The core group is served under /api with no group segment.",
			resource:  services,
			namespace: "myns",
			name:      "mysvc",
			want:      "/api/v1/namespaces/myns/services/mysvc",
		},
		"CoreGroupCollection": {
			reason:   "Listing across all namespaces omits the namespace segment.",
			resource: services,
			want:     "/api/v1/services",
		},
		"NamedGroupClusterScoped": {
			reason:   "Named groups are served under /apis; cluster scope has no namespace.",
			resource: clusterroles,
			name:     "mycr",
			want:     "/apis/rbac.authorization.k8s.io/v1/clusterroles/mycr",
		},
		"Subresource": {
			reason:      "A subresource is appended after the object name.",
			resource:    services,
			namespace:   "myns",
			name:        "mysvc",
			subresource: "status",
			want:        "/api/v1/namespaces/myns/services/mysvc/status",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Path(tc.resource, tc.namespace, tc.name, tc.subresource)
			if got != tc.want {
				t.Errorf("\n%s\nPath(...): want %q, got %q", tc.reason, tc.want, got)
			}
		})
	}
}
