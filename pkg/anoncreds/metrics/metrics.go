/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides Prometheus metrics for credential issuance and revocation.
//
// All record methods are safe to call on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "anoncreds"

// Operation outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeError         = "error"
	OutcomeRegistryFull  = "registry_full"
	OutcomeUnknown       = "unknown"
	OutcomeInvalidValues = "invalid_values"
)

// Metrics contains the issuer metrics.
type Metrics struct {
	// OperationsTotal counts issuer operations by operation and outcome.
	OperationsTotal *prometheus.CounterVec
	// OperationDurationSeconds observes engine call latency by operation.
	OperationDurationSeconds *prometheus.HistogramVec
	// RegistryLockWaitSeconds observes how long mutations wait for a registry lock.
	RegistryLockWaitSeconds prometheus.Histogram
	// RegistriesFullTotal counts registries that ran out of indices.
	RegistriesFullTotal prometheus.Counter
	// RevocationsTotal counts successful revocations.
	RevocationsTotal prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil reg registers with the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issuer_operations_total",
			Help:      "Total number of issuer operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		OperationDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "issuer_operation_duration_seconds",
			Help:      "Duration of issuer operations by operation",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),

		RegistryLockWaitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "revocation_registry_lock_wait_seconds",
			Help:      "Time spent waiting for a revocation registry lock",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),

		RegistriesFullTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocation_registries_full_total",
			Help:      "Total number of revocation registries that ran out of indices",
		}),

		RevocationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_total",
			Help:      "Total number of revoked credentials",
		}),
	}
}

// RecordOperation records the outcome and duration of an operation started at start.
func (m *Metrics) RecordOperation(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}

	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveLockWait records the time spent waiting for a registry lock.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}

	m.RegistryLockWaitSeconds.Observe(d.Seconds())
}

// IncrementRegistriesFull records a registry running out of indices.
func (m *Metrics) IncrementRegistriesFull() {
	if m == nil {
		return
	}

	m.RegistriesFullTotal.Inc()
}

// IncrementRevocations records a successful revocation.
func (m *Metrics) IncrementRevocations() {
	if m == nil {
		return
	}

	m.RevocationsTotal.Inc()
}
