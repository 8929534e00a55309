// Copyright 2019-2025 The Liqo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes the outcome of the reallocation runs as prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
	"github.com/ipv4pool/recovery/pkg/registry"
)

const recipientLabel = "recipient"

// Recorder collects the metrics of the runs on a dedicated registry.
type Recorder struct {
	registry *prometheus.Registry

	// RecoveredAddresses is the size of the recovered pool after the last run.
	RecoveredAddresses prometheus.Gauge
	// ReallocatedAddresses is the size of the reallocated pool after the last run.
	ReallocatedAddresses prometheus.Gauge
	// PrefixLength is the prefix length of the recipient shares of the last run.
	PrefixLength prometheus.Gauge
	// AllocatedBlocks is the counter of the blocks allocated to each recipient.
	AllocatedBlocks *prometheus.CounterVec
	// AllocatedAddresses is the counter of the addresses allocated to each recipient.
	AllocatedAddresses *prometheus.CounterVec
}

// NewRecorder returns a recorder with all its metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		RecoveredAddresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recovery_recovered_pool_addresses",
			Help: "The number of addresses left in the recovered pool.",
		}),
		ReallocatedAddresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recovery_reallocated_pool_addresses",
			Help: "The number of addresses in the reallocated pool.",
		}),
		PrefixLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recovery_prefix_length",
			Help: "The prefix length of the share each recipient is entitled to.",
		}),
		AllocatedBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recovery_allocated_blocks_total",
			Help: "The number of CIDR blocks allocated to each recipient.",
		}, []string{recipientLabel}),
		AllocatedAddresses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recovery_allocated_addresses_total",
			Help: "The number of addresses allocated to each recipient.",
		}, []string{recipientLabel}),
	}

	r.registry.MustRegister(r.RecoveredAddresses, r.ReallocatedAddresses, r.PrefixLength,
		r.AllocatedBlocks, r.AllocatedAddresses)
	return r
}

// Observe records the outcome of a run.
func (r *Recorder) Observe(result *registry.Result) error {
	var recovered, reallocated uint64
	for i := range result.Recovered {
		rng, err := ipamcore.ParseRange(result.Recovered[i].Start, result.Recovered[i].End)
		if err != nil {
			return fmt.Errorf("invalid recovered record: %w", err)
		}
		recovered += rng.Len()
	}
	for i := range result.Reallocated {
		rng, err := ipamcore.ParseRange(result.Reallocated[i].Start, result.Reallocated[i].End)
		if err != nil {
			return fmt.Errorf("invalid reallocated record: %w", err)
		}
		reallocated += rng.Len()
	}

	r.RecoveredAddresses.Set(float64(recovered))
	r.ReallocatedAddresses.Set(float64(reallocated))
	r.PrefixLength.Set(float64(result.Parameters.PrefixLength))
	for i := range result.Allocations {
		allocation := &result.Allocations[i]
		r.AllocatedBlocks.WithLabelValues(allocation.Recipient).Inc()
		r.AllocatedAddresses.WithLabelValues(allocation.Recipient).Add(float64(allocation.Addresses))
	}

	klog.V(4).Infof("Recorded metrics of run %s", result.RunID)
	return nil
}

// Gatherer returns the registry the metrics are collected on.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler exposing the metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics to path, in the format of the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %q: %w", path, err)
	}
	klog.Infof("Metrics written to %q", path)
	return nil
}
