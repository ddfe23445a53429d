// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics holds the Prometheus collectors of the daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BusDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traindaily_bus_dropped_total",
		Help: "Change notifications dropped because a subscriber buffer was full",
	}, []string{"topic"})

	BusSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "traindaily_bus_subscribers",
		Help: "Current number of change notification subscribers",
	})
)

// IncBusDrop records a dropped notification for the given topic.
func IncBusDrop(topic string) {
	if topic == "" {
		topic = "unknown"
	}
	BusDroppedTotal.WithLabelValues(topic).Inc()
}
