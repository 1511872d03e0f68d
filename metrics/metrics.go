// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes the prometheus series the consensus core
// publishes as it ingests events and commits rounds.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the consensus core's prometheus collectors.
type Metrics struct {
	EventsInserted    prometheus.Counter
	WitnessesDetected prometheus.Counter
	ElectionsFamous   prometheus.Counter
	ElectionsNotFamous prometheus.Counter
	CoinRoundsStruck  prometheus.Counter
	RoundsCommitted   prometheus.Counter
	EventsStaled      prometheus.Counter
	EventsExpired     prometheus.Counter
	ConsensusOrder    prometheus.Gauge
	RoundReceived     prometheus.Gauge
}

// New constructs and registers the core's metrics against registerer.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EventsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_events_inserted",
			Help: "Number of events inserted into the event store",
		}),
		WitnessesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_witnesses_detected",
			Help: "Number of events detected as witnesses",
		}),
		ElectionsFamous: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_elections_famous_total",
			Help: "Number of elections decided famous",
		}),
		ElectionsNotFamous: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_elections_not_famous_total",
			Help: "Number of elections decided not famous",
		}),
		CoinRoundsStruck: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_coin_rounds_total",
			Help: "Number of coin-round votes cast",
		}),
		RoundsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_rounds_committed_total",
			Help: "Number of rounds whose fame completed and were committed",
		}),
		EventsStaled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_events_staled_total",
			Help: "Number of events declared stale",
		}),
		EventsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashgraph_events_expired_total",
			Help: "Number of events garbage collected on round expiry",
		}),
		ConsensusOrder: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hashgraph_consensus_order",
			Help: "Highest consensus-order number assigned so far",
		}),
		RoundReceived: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hashgraph_round_received",
			Help: "Highest round-received committed so far",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.EventsInserted, m.WitnessesDetected, m.ElectionsFamous,
		m.ElectionsNotFamous, m.CoinRoundsStruck, m.RoundsCommitted,
		m.EventsStaled, m.EventsExpired, m.ConsensusOrder, m.RoundReceived,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewNoOp returns a Metrics instance registered against a private
// registry, for use by tests and callers that don't care about
// exposing series.
func NewNoOp() *Metrics {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}
	return m
}
