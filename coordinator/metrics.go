package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var polls = promauto.NewCounter(prometheus.CounterOpts{
	Name: "advantageair_polls_total",
	Help: "Successful state polls of the wall controller",
})

var pollErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "advantageair_poll_errors_total",
	Help: "Failed state polls of the wall controller",
})

var pollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "advantageair_poll_duration_seconds",
	Help:    "Time spent fetching the controller state document",
	Buckets: prometheus.DefBuckets,
})

var commands = promauto.NewCounter(prometheus.CounterOpts{
	Name: "advantageair_commands_total",
	Help: "Acknowledged change requests sent to the wall controller",
})

var commandErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "advantageair_command_errors_total",
	Help: "Change requests the wall controller rejected or that failed in transport",
})

var lastPollSuccess = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "advantageair_last_poll_success_timestamp_seconds",
	Help: "Unix time of the last successful poll",
})
