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

// Package apierrors defines the typed errors the client surfaces for failed
// API requests. Server failures carry the decoded Status payload; the
// predicates classify them without forcing callers to inspect codes.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kubeworks/clientkit/pkg/meta"
)

// StatusError wraps the Status payload of a failed request.
type StatusError struct {
	ErrStatus meta.Status
}

// Error returns the server-reported message.
func (e *StatusError) Error() string {
	return e.ErrStatus.String()
}

// Status returns the underlying Status payload.
func (e *StatusError) Status() meta.Status {
	return e.ErrStatus
}

// NewFromStatus wraps an already-decoded Status.
func NewFromStatus(status meta.Status) *StatusError {
	return &StatusError{ErrStatus: status}
}

// FromResponse converts a non-2xx response into a StatusError. The body is
// decoded as a Status payload when possible; otherwise a Status is
// synthesized from the HTTP status code so classification still works.
func FromResponse(code int, body []byte) *StatusError {
	var status meta.Status
	if len(body) > 0 {
		if err := json.Unmarshal(body, &status); err == nil && status.Kind == "Status" {
			if status.Code == 0 {
				status.Code = int32(code)
			}
			return &StatusError{ErrStatus: status}
		}
	}
	return &StatusError{ErrStatus: meta.Status{
		TypeMeta: meta.TypeMeta{Kind: "Status", APIVersion: "v1"},
		Status:   meta.StatusFailure,
		Code:     int32(code),
		Reason:   reasonForCode(code),
		Message:  fmt.Sprintf("the server returned HTTP %d", code),
	}}
}

func reasonForCode(code int) meta.StatusReason {
	switch code {
	case http.StatusUnauthorized:
		return meta.ReasonUnauthorized
	case http.StatusForbidden:
		return meta.ReasonForbidden
	case http.StatusNotFound:
		return meta.ReasonNotFound
	case http.StatusConflict:
		return meta.ReasonConflict
	case http.StatusGone:
		return meta.ReasonGone
	case http.StatusUnprocessableEntity:
		return meta.ReasonInvalid
	case http.StatusGatewayTimeout:
		return meta.ReasonServerTimeout
	default:
		return meta.ReasonUnknown
	}
}

func reasonAndCode(err error) (meta.StatusReason, int32, bool) {
	var se *StatusError
	if !errors.As(err, &se) {
		return meta.ReasonUnknown, 0, false
	}
	return se.ErrStatus.Reason, se.ErrStatus.Code, true
}

func matches(err error, reason meta.StatusReason, code int32) bool {
	r, c, ok := reasonAndCode(err)
	if !ok {
		return false
	}
	if r == reason {
		return true
	}
	// Reason is optional on the wire; fall back to the code.
	return r == meta.ReasonUnknown && c == code
}

// IsNotFound reports whether err says the object does not exist.
func IsNotFound(err error) bool {
	return matches(err, meta.ReasonNotFound, http.StatusNotFound)
}

// IsAlreadyExists reports whether err says a create hit an existing object.
func IsAlreadyExists(err error) bool {
	r, c, ok := reasonAndCode(err)
	if !ok {
		return false
	}
	return r == meta.ReasonAlreadyExists || (r == meta.ReasonConflict && c == http.StatusConflict)
}

// IsConflict reports whether err is a version conflict or an already-exists
// rejection; both are HTTP 409 and both mean the caller's view is stale.
func IsConflict(err error) bool {
	r, c, ok := reasonAndCode(err)
	if !ok {
		return false
	}
	return r == meta.ReasonConflict || r == meta.ReasonAlreadyExists || c == http.StatusConflict
}

// IsInvalid reports whether the server rejected the object as invalid.
func IsInvalid(err error) bool {
	return matches(err, meta.ReasonInvalid, http.StatusUnprocessableEntity)
}

// IsUnauthorized reports whether the request lacked valid credentials.
func IsUnauthorized(err error) bool {
	return matches(err, meta.ReasonUnauthorized, http.StatusUnauthorized)
}

// IsForbidden reports whether the credentials were valid but not permitted.
func IsForbidden(err error) bool {
	return matches(err, meta.ReasonForbidden, http.StatusForbidden)
}

// IsGone reports whether the requested history has been compacted away. A
// watch engine treats this as a signal to relist, never as a terminal error.
func IsGone(err error) bool {
	if matches(err, meta.ReasonGone, http.StatusGone) {
		return true
	}
	// Some servers report compaction as Expired.
	r, c, ok := reasonAndCode(err)
	return ok && (r == meta.ReasonExpired || c == http.StatusGone)
}

// DecodeError reports a payload that could not be decoded into the expected
// shape. It is never retried: a malformed frame will not improve by
// reconnecting.
type DecodeError struct {
	Err  error
	Data []byte
}

// Error describes the failure with a bounded sample of the bad input.
func (e *DecodeError) Error() string {
	sample := e.Data
	if len(sample) > 256 {
		sample = sample[:256]
	}
	return fmt.Sprintf("cannot decode payload: %v: %q", e.Err, sample)
}

// Unwrap returns the underlying decode failure.
func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError wraps a decode failure together with the offending bytes.
func NewDecodeError(err error, data []byte) *DecodeError {
	return &DecodeError{Err: err, Data: data}
}

// IsDecode reports whether err is a payload decode failure.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
