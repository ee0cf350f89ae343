package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncOperationCount counts an engine operation (convert, cartesian, ...).
	IncOperationCount(operation string, frame string, success bool)

	// ObserveOperationDuration records how long an engine operation took.
	ObserveOperationDuration(operation string, duration time.Duration)

	// SetDatasetsLoaded sets the number of loaded datasets.
	SetDatasetsLoaded(count int)

	// SetFeaturesLoaded sets the total number of loaded features.
	SetFeaturesLoaded(count int)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)

	// ObserveStorageDuration records storage operation duration.
	ObserveStorageDuration(operation string, duration time.Duration)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncOperationCount implements MetricsCollector.
func (n *NoOpMetrics) IncOperationCount(_ string, _ string, _ bool) {}

// ObserveOperationDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveOperationDuration(_ string, _ time.Duration) {}

// SetDatasetsLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetDatasetsLoaded(_ int) {}

// SetFeaturesLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetFeaturesLoaded(_ int) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}

// ObserveStorageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
