package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome",
		},
		[]string{"outcome"}, // accepted|invalid|error
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_notifications_total",
			Help: "Notification emails by kind and outcome",
		},
		[]string{"kind", "outcome"}, // admin|auto_reply , sent|failed|dropped
	)

	NotificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "contact_notification_queue_depth",
			Help: "Notification jobs waiting for a worker",
		},
	)

	StatusUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_status_updates_total",
			Help: "Admin status updates by target status and outcome",
		},
		[]string{"status", "outcome"}, // new|read|replied|archived|invalid , ok|failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		SubmissionsTotal,
		NotificationsTotal,
		NotificationQueueDepth,
		StatusUpdatesTotal,
	)
}
