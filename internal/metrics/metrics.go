package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReminderFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_fired_total",
			Help: "Reminder firings by trigger family",
		},
		[]string{"family"},
	)

	ReminderEmail = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_email_total",
			Help: "Reminder and task-detail emails by outcome",
		},
		[]string{"status"}, // success, failed
	)

	SchedulerTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_tick_duration_seconds",
			Help:    "Duration of one scheduler pass",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	NativeNotification = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "native_notification_total",
			Help: "Native notification deliveries by sink and outcome",
		},
		[]string{"sink", "status"},
	)

	StoreFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_failures_total",
			Help: "Swallowed persistent store failures",
		},
		[]string{"op"}, // get, set, decode, encode
	)
)

func RecordReminderFired(family string) {
	ReminderFired.WithLabelValues(family).Inc()
}

func RecordEmail(err error) {
	ReminderEmail.WithLabelValues(status(err)).Inc()
}

func RecordTick(duration time.Duration) {
	SchedulerTickDuration.Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func RecordNativeNotification(sink string, err error) {
	NativeNotification.WithLabelValues(sink, status(err)).Inc()
}

func RecordStoreFailure(op string) {
	StoreFailures.WithLabelValues(op).Inc()
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
