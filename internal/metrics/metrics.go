package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultChanged = "changed"
	ResultIdle    = "idle"
)

var (
	Broadcasts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pledgetracker_broadcasts_total",
		Help: "Totals snapshots published to live clients.",
	}, []string{"result"})

	PollTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pledgetracker_poll_ticks_total",
		Help: "Change detector ticks by outcome.",
	}, []string{"result"})

	WSClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pledgetracker_ws_clients",
		Help: "Connected websocket clients.",
	})

	PledgeUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pledgetracker_pledge_updates_total",
		Help: "Successful paddle pledge count updates.",
	})
)

func init() {
	prometheus.MustRegister(Broadcasts, PollTicks, WSClients, PledgeUpdates)
}
