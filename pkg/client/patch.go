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

package client

import (
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/pkg/errors"

	"github.com/kubeworks/clientkit/pkg/meta"
	"github.com/kubeworks/clientkit/pkg/rest"
)

const (
	errEncodePatchBase = "cannot encode patch base object"
	errEncodePatchGoal = "cannot encode patch goal object"
	errCreateMergeDiff = "cannot compute merge patch"
)

// A PatchType selects the patch dialect the server applies.
type PatchType string

// Patch types supported by the API server.
const (
	JSONPatchType           PatchType = "json"
	MergePatchType          PatchType = "merge"
	StrategicMergePatchType PatchType = "strategic"
)

// ContentType returns the media type the server expects for this dialect.
func (t PatchType) ContentType() string {
	switch t {
	case JSONPatchType:
		return rest.ContentTypeJSONPatch
	case MergePatchType:
		return rest.ContentTypeMergePatch
	case StrategicMergePatchType:
		return rest.ContentTypeStrategicPatch
	default:
		return rest.ContentTypeMergePatch
	}
}

// A Patch is an encoded partial update.
type Patch struct {
	Type PatchType
	Data []byte
}

// RawPatch wraps pre-encoded patch data.
func RawPatch(t PatchType, data []byte) Patch {
	return Patch{Type: t, Data: data}
}

// MergePatchFrom computes the RFC 7386 merge patch that transforms base
// into goal. Both objects are encoded with the codec they would be sent
// with, so the diff reflects the wire representation.
func MergePatchFrom[T meta.Object](c *Client[T], base, goal T) (Patch, error) {
	from, err := c.codec.Encode(base)
	if err != nil {
		return Patch{}, errors.Wrap(err, errEncodePatchBase)
	}
	to, err := c.codec.Encode(goal)
	if err != nil {
		return Patch{}, errors.Wrap(err, errEncodePatchGoal)
	}
	data, err := jsonpatch.CreateMergePatch(from, to)
	if err != nil {
		return Patch{}, errors.Wrap(err, errCreateMergeDiff)
	}
	return Patch{Type: MergePatchType, Data: data}, nil
}
