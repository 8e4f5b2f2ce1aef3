package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "weighstation_"

const (
	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	messagesTotal  *prometheus.CounterVec
	droppedTotal   prometheus.Counter
	reconnectTotal prometheus.Counter
	connectedGauge prometheus.Gauge
	commandsTotal  *prometheus.CounterVec
)

// Init registers the station metrics exactly once.
func Init() {
	registerOnce.Do(func() {
		messagesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "messages_total",
				Help: "Broker messages received by topic",
			},
			[]string{"topic"},
		)
		droppedTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "dropped_frames_total",
				Help: "Broker frames dropped as malformed",
			},
		)
		reconnectTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconnects_total",
				Help: "Broker reconnect attempts",
			},
		)
		connectedGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "broker_connected",
				Help: "1 when the broker connection is up",
			},
		)
		commandsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Operator commands by name and result",
			},
			[]string{"command", "result"},
		)

		prometheus.MustRegister(
			messagesTotal,
			droppedTotal,
			reconnectTotal,
			connectedGauge,
			commandsTotal,
		)
	})
}

// ObserveMessage counts one decoded broker message.
func ObserveMessage(topic string) {
	if messagesTotal != nil {
		messagesTotal.WithLabelValues(topic).Inc()
	}
}

// ObserveDropped counts one silently dropped frame.
func ObserveDropped() {
	if droppedTotal != nil {
		droppedTotal.Inc()
	}
}

// ObserveReconnect counts one reconnect attempt.
func ObserveReconnect() {
	if reconnectTotal != nil {
		reconnectTotal.Inc()
	}
}

// SetConnected flips the broker connectivity gauge.
func SetConnected(up bool) {
	if connectedGauge == nil {
		return
	}
	if up {
		connectedGauge.Set(1)
		return
	}
	connectedGauge.Set(0)
}

// ObserveCommand counts one operator command outcome.
func ObserveCommand(command string, err error) {
	if commandsTotal == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	commandsTotal.WithLabelValues(command, result).Inc()
}
