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

package meta

import "fmt"

// StatusSuccess and StatusFailure are the values of Status.Status.
const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// StatusReason is a machine-readable one-word reason for a failure Status.
type StatusReason string

// Reasons the client distinguishes. The server may report others; they are
// passed through untouched.
const (
	ReasonUnknown       StatusReason = ""
	ReasonUnauthorized  StatusReason = "Unauthorized"
	ReasonForbidden     StatusReason = "Forbidden"
	ReasonNotFound      StatusReason = "NotFound"
	ReasonAlreadyExists StatusReason = "AlreadyExists"
	ReasonConflict      StatusReason = "Conflict"
	ReasonGone          StatusReason = "Gone"
	ReasonInvalid       StatusReason = "Invalid"
	ReasonExpired       StatusReason = "Expired"
	ReasonTimeout       StatusReason = "Timeout"
	ReasonServerTimeout StatusReason = "ServerTimeout"
)

// Status is the structured payload the server returns for failed requests
// and for terminal watch events.
type Status struct {
	TypeMeta `json:",inline"`

	Metadata ListMeta       `json:"metadata,omitempty"`
	Status   string         `json:"status,omitempty"`
	Message  string         `json:"message,omitempty"`
	Reason   StatusReason   `json:"reason,omitempty"`
	Details  *StatusDetails `json:"details,omitempty"`
	Code     int32          `json:"code,omitempty"`
}

// StatusDetails carries extra structured information about a failure.
type StatusDetails struct {
	Name              string        `json:"name,omitempty"`
	Group             string        `json:"group,omitempty"`
	Kind              string        `json:"kind,omitempty"`
	UID               string        `json:"uid,omitempty"`
	Causes            []StatusCause `json:"causes,omitempty"`
	RetryAfterSeconds int32         `json:"retryAfterSeconds,omitempty"`
}

// StatusCause is one contributing cause of a failure.
type StatusCause struct {
	Type    string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// String renders the status for logs and error messages.
func (s *Status) String() string {
	switch {
	case s.Message != "":
		return s.Message
	case s.Reason != ReasonUnknown:
		return string(s.Reason)
	default:
		return fmt.Sprintf("%s (code %d)", s.Status, s.Code)
	}
}
