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
	"net/url"
	"strconv"
	"strings"
)

// GetOptions tune a single-object read.
type GetOptions struct {
	// ResourceVersion, when set, allows the server to serve the read from
	// history at least as fresh as the given token.
	ResourceVersion string
}

func (o GetOptions) query() url.Values {
	q := url.Values{}
	if o.ResourceVersion != "" {
		q.Set("resourceVersion", o.ResourceVersion)
	}
	return q
}

// CreateOptions tune a create.
type CreateOptions struct {
	FieldManager string
	DryRun       []string
}

func (o CreateOptions) query() url.Values {
	q := url.Values{}
	if o.FieldManager != "" {
		q.Set("fieldManager", o.FieldManager)
	}
	if len(o.DryRun) > 0 {
		q.Set("dryRun", strings.Join(o.DryRun, ","))
	}
	return q
}

// UpdateOptions tune an update.
type UpdateOptions struct {
	FieldManager string
	DryRun       []string
}

func (o UpdateOptions) query() url.Values {
	return CreateOptions{FieldManager: o.FieldManager, DryRun: o.DryRun}.query()
}

// PatchOptions tune a patch.
type PatchOptions struct {
	FieldManager string
	DryRun       []string
	Force        *bool
}

func (o PatchOptions) query() url.Values {
	q := CreateOptions{FieldManager: o.FieldManager, DryRun: o.DryRun}.query()
	if o.Force != nil {
		q.Set("force", strconv.FormatBool(*o.Force))
	}
	return q
}

// DeleteOptions tune a delete.
type DeleteOptions struct {
	GracePeriodSeconds *int64
	PropagationPolicy  string
}

func (o DeleteOptions) query() url.Values {
	q := url.Values{}
	if o.GracePeriodSeconds != nil {
		q.Set("gracePeriodSeconds", strconv.FormatInt(*o.GracePeriodSeconds, 10))
	}
	if o.PropagationPolicy != "" {
		q.Set("propagationPolicy", o.PropagationPolicy)
	}
	return q
}

// ListOptions tune list and watch calls. Limit and Continue drive
// pagination; ResourceVersion pins a list to a point in history or resumes a
// watch without a gap. All tokens are opaque and forwarded verbatim.
type ListOptions struct {
	LabelSelector   string
	FieldSelector   string
	ResourceVersion string
	Limit           int64
	Continue        string

	// TimeoutSeconds bounds a watch call server-side.
	TimeoutSeconds *int64

	// AllowWatchBookmarks asks the server for periodic resume-token
	// updates. The watch engine always sets it.
	AllowWatchBookmarks bool
}

func (o ListOptions) query(forWatch bool) url.Values {
	q := url.Values{}
	if o.LabelSelector != "" {
		q.Set("labelSelector", o.LabelSelector)
	}
	if o.FieldSelector != "" {
		q.Set("fieldSelector", o.FieldSelector)
	}
	if o.ResourceVersion != "" {
		q.Set("resourceVersion", o.ResourceVersion)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.FormatInt(o.Limit, 10))
	}
	if o.Continue != "" {
		q.Set("continue", o.Continue)
	}
	if o.TimeoutSeconds != nil {
		q.Set("timeoutSeconds", strconv.FormatInt(*o.TimeoutSeconds, 10))
	}
	if forWatch {
		q.Set("watch", "true")
		if o.AllowWatchBookmarks {
			q.Set("allowWatchBookmarks", "true")
		}
	}
	return q
}
