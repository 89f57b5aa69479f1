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

package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseGroupVersion(t *testing.T) {
	cases := map[string]struct {
		reason  string
		gv      string
		want    GroupVersion
		wantErr bool
	}{
		"CoreGroup": {
			reason: "A bare version belongs to the core group.",
			gv:     "v1",
			want:   GroupVersion{Version: "v1"},
		},
		"NamedGroup": {
			reason: "A group/version pair splits on the slash.",
			gv:     "apps/v1",
			want:   GroupVersion{Group: "apps", Version: "v1"},
		},
		"EmptyGroup": {
			reason: "A leading slash still yields the core group.",
			gv:     "/v1",
			want:   GroupVersion{Version: "v1"},
		},
		"TooManySlashes": {
			reason:  "More than one slash is not a valid group version.",
			gv:      "a/b/c",
			wantErr: true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseGroupVersion(tc.gv)
			if (err != nil) != tc.wantErr {
				t.Fatalf("\n%s\nParseGroupVersion(%q): unexpected error state: %v", tc.reason, tc.gv, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("\n%s\nParseGroupVersion(%q): -want, +got:\n%s", tc.reason, tc.gv, diff)
			}
		})
	}
}

func TestGroupVersionString(t *testing.T) {
	cases := map[string]struct {
		gv   GroupVersion
		want string
	}{
		"Core":  {gv: GroupVersion{Version: "v1"}, want: "v1"},
		"Named": {gv: GroupVersion{Group: "batch", Version: "v1"}, want: "batch/v1"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := tc.gv.String(); got != tc.want {
				t.Errorf("String(): want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAPIPrefix(t *testing.T) {
	if got := (GroupVersion{Version: "v1"}).APIPrefix(); got != "api" {
		t.Errorf("core group APIPrefix(): want \"api\", got %q", got)
	}
	if got := (GroupVersion{Group: "apps", Version: "v1"}).APIPrefix(); got != "apis" {
		t.Errorf("named group APIPrefix(): want \"apis\", got %q", got)
	}
}
