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

package unstructured

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kubeworks/clientkit/pkg/meta"
)

var _ meta.Object = &Unstructured{}

func TestRoundTripPreservesBytes(t *testing.T) {
	cases := map[string]struct {
		reason string
		data   string
	}{
		"UnknownFields": {
			reason: "Fields with no declared meaning must survive verbatim.",
			data:   `{"apiVersion":"example.io/v1","kind":"Widget","metadata":{"name":"w","namespace":"ns","resourceVersion":"42"},"spec":{"zeta":1,"alpha":"x","mid":{"b":true,"a":null}}}`,
		},
		"FieldOrder": {
			reason: "Decode then re-encode must not reorder fields.",
			data:   `{"z":1,"y":2,"x":3,"w":{"c":1,"b":2,"a":3}}`,
		},
		"NestedArrays": {
			reason: "Arrays of mixed values round-trip element by element.",
			data:   `{"items":[{"b":1,"a":2},[1,"two",false,null],"s"],"empty":[]}`,
		},
		"EmptyMappings": {
			reason: "Empty objects stay empty objects.",
			data:   `{"metadata":{},"spec":{"deep":{}}}`,
		},
		"NumberFormats": {
			reason: "Number text is preserved, not re-rendered.",
			data:   `{"int":7,"neg":-3,"exp":1e3,"frac":0.250,"big":9007199254740993}`,
		},
		"StringEscapes": {
			reason: "Unicode and escapes survive a round trip.",
			data:   `{"s":"a\nb","u":"héllo"}`,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			u := New()
			if err := u.UnmarshalJSON([]byte(tc.data)); err != nil {
				t.Fatalf("\n%s\nUnmarshalJSON(...): %v", tc.reason, err)
			}
			got, err := u.MarshalJSON()
			if err != nil {
				t.Fatalf("\n%s\nMarshalJSON(): %v", tc.reason, err)
			}
			// Escapes may be normalized; everything else is byte-for-byte.
			if name == "StringEscapes" {
				again := New()
				if err := again.UnmarshalJSON(got); err != nil {
					t.Fatalf("\n%s\nUnmarshalJSON(round-tripped): %v", tc.reason, err)
				}
				second, err := again.MarshalJSON()
				if err != nil {
					t.Fatalf("\n%s\nMarshalJSON(): %v", tc.reason, err)
				}
				if diff := cmp.Diff(string(got), string(second)); diff != "" {
					t.Errorf("\n%s\nsecond round trip: -want, +got:\n%s", tc.reason, diff)
				}
				return
			}
			if diff := cmp.Diff(tc.data, string(got)); diff != "" {
				t.Errorf("\n%s\nround trip: -want, +got:\n%s", tc.reason, diff)
			}
		})
	}
}

func TestMetadataAccessors(t *testing.T) {
	data := `{"apiVersion":"v1","kind":"Service","metadata":{"name":"svc","namespace":"prod","uid":"u-1","resourceVersion":"100","labels":{"app":"web"},"annotations":{"note":"hi"}}}`

	u := New()
	if err := u.UnmarshalJSON([]byte(data)); err != nil {
		t.Fatalf("UnmarshalJSON(...): %v", err)
	}

	if got := u.GetAPIVersion(); got != "v1" {
		t.Errorf("GetAPIVersion(): want \"v1\", got %q", got)
	}
	if got := u.GetKind(); got != "Service" {
		t.Errorf("GetKind(): want \"Service\", got %q", got)
	}
	if got := u.GetName(); got != "svc" {
		t.Errorf("GetName(): want \"svc\", got %q", got)
	}
	if got := u.GetNamespace(); got != "prod" {
		t.Errorf("GetNamespace(): want \"prod\", got %q", got)
	}
	if got := u.GetUID(); got != "u-1" {
		t.Errorf("GetUID(): want \"u-1\", got %q", got)
	}
	if got := u.GetResourceVersion(); got != "100" {
		t.Errorf("GetResourceVersion(): want \"100\", got %q", got)
	}
	if diff := cmp.Diff(map[string]string{"app": "web"}, u.GetLabels()); diff != "" {
		t.Errorf("GetLabels(): -want, +got:\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"note": "hi"}, u.GetAnnotations()); diff != "" {
		t.Errorf("GetAnnotations(): -want, +got:\n%s", diff)
	}

	u.SetResourceVersion("101")
	if got := u.GetResourceVersion(); got != "101" {
		t.Errorf("GetResourceVersion() after set: want \"101\", got %q", got)
	}

	u.SetLabels(map[string]string{"b": "2", "a": "1"})
	out, err := u.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON(): %v", err)
	}
	// Replacement label maps are written with sorted keys.
	want := `"labels":{"a":"1","b":"2"}`
	if !contains(string(out), want) {
		t.Errorf("MarshalJSON() missing %s in %s", want, out)
	}
}

func TestSetNestedFieldCreatesPath(t *testing.T) {
	u := New()
	if err := u.SetNestedField("x", "spec", "template", "name"); err != nil {
		t.Fatalf("SetNestedField(...): %v", err)
	}
	if got := u.NestedString("spec", "template", "name"); got != "x" {
		t.Errorf("NestedString(...): want \"x\", got %q", got)
	}

	if err := u.SetNestedField("boom", "spec", "template", "name", "deeper"); err == nil {
		t.Error("SetNestedField(...) through a string: want error, got nil")
	}
}

func TestObjectSetKeepsPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", 1)
	o.Set("b", 2)
	o.Set("a", 3)

	want := []Field{{Key: "a", Value: 3}, {Key: "b", Value: 2}}
	if diff := cmp.Diff(want, o.Fields()); diff != "" {
		t.Errorf("Fields(): -want, +got:\n%s", diff)
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	u := New()
	if err := u.SetNestedField("orig", "spec", "field"); err != nil {
		t.Fatalf("SetNestedField(...): %v", err)
	}
	cp := u.DeepCopy()
	if err := cp.SetNestedField("changed", "spec", "field"); err != nil {
		t.Fatalf("SetNestedField(...): %v", err)
	}
	if got := u.NestedString("spec", "field"); got != "orig" {
		t.Errorf("DeepCopy() aliased the original: got %q", got)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
