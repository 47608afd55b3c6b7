package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "contact"

// Channel label values
const (
	ChannelEmail     = "email"
	ChannelAutoReply = "autoreply"
	ChannelTelegram  = "telegram"
)

var (
	// Submissions counts Submit verdicts by result
	// (success, honeypot, invalid, rate_limited, send_failed)
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Contact submissions by result.",
		},
		[]string{"result"},
	)
	// ChannelDeliveries counts per-channel delivery outcomes
	ChannelDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_deliveries_total",
			Help:      "Notification channel deliveries by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
	// ChannelDuration observes how long a channel send took
	ChannelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "channel_send_duration_seconds",
			Help:      "Duration of notification channel sends.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"channel"},
	)
	// APIRateLimited counts requests rejected by the per-IP API limiter
	APIRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_rate_limited_total",
		Help:      "Requests rejected by the per-IP API limiter.",
	})
)
