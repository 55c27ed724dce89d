package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OCMLabelReconciler - metrics prefix
	OCMLabelReconciler = "ocm_label_reconciler"

	// LabelOperationsSuccessCount - name of the metric for successful label write operations
	LabelOperationsSuccessCount = "label_operations_success_count"
	// LabelOperationsTotalCount - name of the metric for all attempted label write operations
	LabelOperationsTotalCount = "label_operations_total_count"
	labelOperation            = "operation"

	ReconcilerDuration     = "reconciler_duration_in_seconds"
	ReconcilerSuccessCount = "reconciler_success_count"
	ReconcilerFailureCount = "reconciler_failure_count"
	ReconcilerErrorsCount  = "reconciler_errors_count"
	labelReconcilerType    = "worker_type"
)

// LabelOperation is the kind of label write issued against OCM
type LabelOperation string

const (
	// LabelOperationCreate - a label was added to a label container
	LabelOperationCreate LabelOperation = "create"
	// LabelOperationUpdate - an existing label's value was replaced
	LabelOperationUpdate LabelOperation = "update"
	// LabelOperationDelete - a label was removed from a label container
	LabelOperationDelete LabelOperation = "delete"
)

// LabelOperationsCountMetricsLabels - is the slice of labels to add to label operations count metrics
var LabelOperationsCountMetricsLabels = []string{
	labelOperation,
}

var ReconcilerMetricsLabels = []string{
	labelReconcilerType,
}

var labelOperationsSuccessCountMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: OCMLabelReconciler,
		Name:      LabelOperationsSuccessCount,
		Help:      "number of successful label operations",
	},
	LabelOperationsCountMetricsLabels,
)

var labelOperationsTotalCountMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: OCMLabelReconciler,
		Name:      LabelOperationsTotalCount,
		Help:      "number of total label operations",
	},
	LabelOperationsCountMetricsLabels,
)

// IncreaseLabelSuccessOperationsCountMetric - increase counter for successful label operations
func IncreaseLabelSuccessOperationsCountMetric(operation LabelOperation) {
	labels := prometheus.Labels{
		labelOperation: string(operation),
	}
	labelOperationsSuccessCountMetric.With(labels).Inc()
}

// IncreaseLabelTotalOperationsCountMetric - increase counter for all attempted label operations
func IncreaseLabelTotalOperationsCountMetric(operation LabelOperation) {
	labels := prometheus.Labels{
		labelOperation: string(operation),
	}
	labelOperationsTotalCountMetric.With(labels).Inc()
}

var reconcilerDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: OCMLabelReconciler,
		Name:      ReconcilerDuration,
		Help:      "duration of each reconcile in seconds",
		Buckets: []float64{
			1.0,
			5.0,
			10.0,
			30.0,
			60.0,
			120.0,
			300.0,
		},
	},
	ReconcilerMetricsLabels,
)

// UpdateReconcilerDurationMetric records the duration of a reconcile run
func UpdateReconcilerDurationMetric(reconcilerType string, elapsed time.Duration) {
	labels := prometheus.Labels{
		labelReconcilerType: reconcilerType,
	}
	reconcilerDurationMetric.With(labels).Observe(elapsed.Seconds())
}

var reconcilerSuccessCountMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: OCMLabelReconciler,
		Name:      ReconcilerSuccessCount,
		Help:      "count of successful reconciles",
	},
	ReconcilerMetricsLabels,
)

func IncreaseReconcilerSuccessCount(reconcilerType string) {
	labels := prometheus.Labels{
		labelReconcilerType: reconcilerType,
	}
	reconcilerSuccessCountMetric.With(labels).Inc()
}

var reconcilerFailureCountMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: OCMLabelReconciler,
		Name:      ReconcilerFailureCount,
		Help:      "count of failed reconciles",
	},
	ReconcilerMetricsLabels,
)

func IncreaseReconcilerFailureCount(reconcilerType string) {
	labels := prometheus.Labels{
		labelReconcilerType: reconcilerType,
	}
	reconcilerFailureCountMetric.With(labels).Inc()
}

var reconcilerErrorsCountMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: OCMLabelReconciler,
		Name:      ReconcilerErrorsCount,
		Help:      "count of errors raised during reconciles",
	},
	ReconcilerMetricsLabels,
)

func IncreaseReconcilerErrorsCount(reconcilerType string, numOfErr int) {
	labels := prometheus.Labels{
		labelReconcilerType: reconcilerType,
	}
	reconcilerErrorsCountMetric.With(labels).Add(float64(numOfErr))
}

func init() {
	prometheus.MustRegister(labelOperationsSuccessCountMetric)
	prometheus.MustRegister(labelOperationsTotalCountMetric)
	prometheus.MustRegister(reconcilerDurationMetric)
	prometheus.MustRegister(reconcilerSuccessCountMetric)
	prometheus.MustRegister(reconcilerFailureCountMetric)
	prometheus.MustRegister(reconcilerErrorsCountMetric)
}

// ResetMetricsForReconcilers resets reconciler metrics, used on worker shutdown
func ResetMetricsForReconcilers() {
	reconcilerDurationMetric.Reset()
	reconcilerSuccessCountMetric.Reset()
	reconcilerFailureCountMetric.Reset()
	reconcilerErrorsCountMetric.Reset()
}

// Reset all metrics, for use in tests
func Reset() {
	labelOperationsSuccessCountMetric.Reset()
	labelOperationsTotalCountMetric.Reset()
	ResetMetricsForReconcilers()
}
