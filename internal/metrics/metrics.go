// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for exporting pingup runtime metrics.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 1. Internal State (Source of Truth)
var (
	messagesSent       int64
	deliveries         int64
	deliveryMisses     int64
	staleHandles       int64
	liveConnections    int64
	runsStarted        int64
	stepsFailed        int64
	remindersSent      int64
	remindersSkipped   int64
	notifyFailures     int64
	lastSchedulerPoll  int64
)

const counterInc int64 = 1

// 2. Prometheus Collectors
var (
	promMessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pingup_messages_sent_total",
			Help: "Total chat messages persisted",
		},
	)
	promDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingup_live_deliveries_total",
			Help: "Total live delivery attempts by outcome",
		},
		[]string{"outcome"},
	)
	promLiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pingup_live_connections",
			Help: "Currently registered live connections",
		},
	)
	promRunsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pingup_workflow_runs_started_total",
			Help: "Total workflow runs created",
		},
	)
	promStepsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pingup_workflow_steps_failed_total",
			Help: "Total workflow step executions that failed and will be retried",
		},
	)
	promReminders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingup_reminders_total",
			Help: "Connection-request reminders by outcome",
		},
		[]string{"outcome"},
	)
	promNotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pingup_notification_failures_total",
			Help: "Total notification sends that exhausted retries",
		},
	)
	promStepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pingup_workflow_step_duration_seconds",
			Help: "Duration of workflow step executions",
			Buckets: []float64{
				0.01,
				0.05,
				0.1,
				0.5,
				1,
				2,
				5,
				10,
				30,
			},
		},
	)
	promLastPoll = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pingup_scheduler_last_poll_timestamp_seconds",
			Help: "Unix timestamp of the scheduler's last poll",
		},
	)
)

func init() {
	prometheus.MustRegister(
		promMessagesSent,
		promDeliveries,
		promLiveConnections,
		promRunsStarted,
		promStepsFailed,
		promReminders,
		promNotifyFailures,
		promStepDuration,
		promLastPoll,
	)
}

// 3. Public API (Updates both Atomic and Prometheus)

// IncMessageSent increments the counter for persisted chat messages.
func IncMessageSent() {
	atomic.AddInt64(&messagesSent, counterInc)
	promMessagesSent.Inc()
}

// IncDelivered increments the counter for live frames written to a recipient.
func IncDelivered() {
	atomic.AddInt64(&deliveries, counterInc)
	promDeliveries.WithLabelValues("delivered").Inc()
}

// IncDeliveryMiss increments the counter for deliveries to offline recipients.
func IncDeliveryMiss() {
	atomic.AddInt64(&deliveryMisses, counterInc)
	promDeliveries.WithLabelValues("miss").Inc()
}

// IncStaleHandle increments the counter for live handles evicted after a
// failed write.
func IncStaleHandle() {
	atomic.AddInt64(&staleHandles, counterInc)
	promDeliveries.WithLabelValues("stale").Inc()
}

// SetLiveConnections records the current number of registered live connections.
func SetLiveConnections(n int) {
	atomic.StoreInt64(&liveConnections, int64(n))
	promLiveConnections.Set(float64(n))
}

// IncRunStarted increments the counter for created workflow runs.
func IncRunStarted() {
	atomic.AddInt64(&runsStarted, counterInc)
	promRunsStarted.Inc()
}

// IncStepFailed increments the counter for failed (retryable) step executions.
func IncStepFailed() {
	atomic.AddInt64(&stepsFailed, counterInc)
	promStepsFailed.Inc()
}

// IncReminderSent increments the counter for reminders actually delivered.
func IncReminderSent() {
	atomic.AddInt64(&remindersSent, counterInc)
	promReminders.WithLabelValues("sent").Inc()
}

// IncReminderSkipped increments the counter for reminders short-circuited
// because the request was already accepted.
func IncReminderSkipped() {
	atomic.AddInt64(&remindersSkipped, counterInc)
	promReminders.WithLabelValues("skipped").Inc()
}

// IncNotificationFailure increments the counter for notification sends that
// exhausted their retries.
func IncNotificationFailure() {
	atomic.AddInt64(&notifyFailures, counterInc)
	promNotifyFailures.Inc()
}

// ObserveStepDuration records the duration (in seconds) of a workflow step.
func ObserveStepDuration(seconds float64) {
	promStepDuration.Observe(seconds)
}

// SetLastPoll stores the provided time as the scheduler's last poll timestamp.
func SetLastPoll(t time.Time) {
	atomic.StoreInt64(&lastSchedulerPoll, t.Unix())
	promLastPoll.Set(float64(t.Unix()))
}

// 4. JSON Snapshot Struct (For status endpoint)

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	MessagesSent     int64  `json:"messages_sent"`
	Deliveries       int64  `json:"deliveries"`
	DeliveryMisses   int64  `json:"delivery_misses"`
	StaleHandles     int64  `json:"stale_handles"`
	LiveConnections  int64  `json:"live_connections"`
	RunsStarted      int64  `json:"workflow_runs_started"`
	StepsFailed      int64  `json:"workflow_steps_failed"`
	RemindersSent    int64  `json:"reminders_sent"`
	RemindersSkipped int64  `json:"reminders_skipped"`
	NotifyFailures   int64  `json:"notification_failures"`
	LastPoll         int64  `json:"last_poll_timestamp"`
	LastPollHuman    string `json:"last_poll_human"`
}

// GetSnapshot returns a StatsSnapshot with the current values of all
// internal counters and timestamps.
func GetSnapshot() StatsSnapshot {
	ts := atomic.LoadInt64(&lastSchedulerPoll)
	return StatsSnapshot{
		MessagesSent:     atomic.LoadInt64(&messagesSent),
		Deliveries:       atomic.LoadInt64(&deliveries),
		DeliveryMisses:   atomic.LoadInt64(&deliveryMisses),
		StaleHandles:     atomic.LoadInt64(&staleHandles),
		LiveConnections:  atomic.LoadInt64(&liveConnections),
		RunsStarted:      atomic.LoadInt64(&runsStarted),
		StepsFailed:      atomic.LoadInt64(&stepsFailed),
		RemindersSent:    atomic.LoadInt64(&remindersSent),
		RemindersSkipped: atomic.LoadInt64(&remindersSkipped),
		NotifyFailures:   atomic.LoadInt64(&notifyFailures),
		LastPoll:         ts,
		LastPollHuman:    time.Unix(ts, 0).Format(time.RFC3339),
	}
}

// 5. Handlers

// PromHandler returns an HTTP handler that exposes Prometheus metrics.
func PromHandler() http.Handler { return promhttp.Handler() }

// JSONHandler returns an HTTP handler that serves the current metrics as
// a JSON-encoded StatsSnapshot.
func JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	})
}
