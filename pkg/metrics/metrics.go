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

// Package metrics instruments the watch engine. The default recorder does
// nothing; wire the Prometheus recorder into a registry to expose counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// A Recorder observes watch engine activity.
type Recorder interface {
	// Relist records a full resynchronization of a collection.
	Relist(resource string)

	// Reconnect records a transparent watch re-establishment after a
	// transport-level disconnect.
	Reconnect(resource string)

	// Event records one delivered watch event.
	Event(resource, eventType string)
}

// NewNopRecorder returns a Recorder that discards everything.
func NewNopRecorder() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Relist(string)        {}
func (nopRecorder) Reconnect(string)     {}
func (nopRecorder) Event(string, string) {}

// PrometheusRecorder counts watch engine activity per resource. It is a
// prometheus.Collector; register it with your registry.
type PrometheusRecorder struct {
	relists    *prometheus.CounterVec
	reconnects *prometheus.CounterVec
	events     *prometheus.CounterVec
}

// NewPrometheusRecorder returns a recorder exposing clientkit_* counters.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		relists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clientkit",
			Subsystem: "watch",
			Name:      "relists_total",
			Help:      "Full resynchronizations performed after watch history expired.",
		}, []string{"resource"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clientkit",
			Subsystem: "watch",
			Name:      "reconnects_total",
			Help:      "Watch streams transparently re-established after a disconnect.",
		}, []string{"resource"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clientkit",
			Subsystem: "watch",
			Name:      "events_total",
			Help:      "Watch events delivered to callers.",
		}, []string{"resource", "type"}),
	}
}

// Relist increments the relist counter for resource.
func (r *PrometheusRecorder) Relist(resource string) {
	r.relists.WithLabelValues(resource).Inc()
}

// Reconnect increments the reconnect counter for resource.
func (r *PrometheusRecorder) Reconnect(resource string) {
	r.reconnects.WithLabelValues(resource).Inc()
}

// Event increments the event counter for resource and event type.
func (r *PrometheusRecorder) Event(resource, eventType string) {
	r.events.WithLabelValues(resource, eventType).Inc()
}

// Describe implements prometheus.Collector.
func (r *PrometheusRecorder) Describe(ch chan<- *prometheus.Desc) {
	r.relists.Describe(ch)
	r.reconnects.Describe(ch)
	r.events.Describe(ch)
}

// Collect implements prometheus.Collector.
func (r *PrometheusRecorder) Collect(ch chan<- prometheus.Metric) {
	r.relists.Collect(ch)
	r.reconnects.Collect(ch)
	r.events.Collect(ch)
}
