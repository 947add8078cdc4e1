// Package metrics exposes Prometheus counters for the economy and minigames.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the recorder interfaces of the ledger, minigame,
// status and bot packages.
type Collector struct {
	spins         *prometheus.CounterVec
	spinCoins     prometheus.Counter
	redemptions   *prometheus.CounterVec
	sessions      *prometheus.CounterVec
	commands      *prometheus.CounterVec
	statusUpdates *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		spins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epicgambler_spins_total",
			Help: "Daily spins claimed, by reward.",
		}, []string{"reward"}),
		spinCoins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epicgambler_spin_coins_total",
			Help: "Coins paid out by daily spins.",
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epicgambler_redemptions_total",
			Help: "Shop redemptions, by outcome.",
		}, []string{"outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epicgambler_sessions_total",
			Help: "Minigame session outcomes.",
		}, []string{"kind", "outcome"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epicgambler_commands_total",
			Help: "Slash commands handled, by name and result.",
		}, []string{"command", "result"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epicgambler_status_updates_total",
			Help: "Status message edits, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.spins,
		c.spinCoins,
		c.redemptions,
		c.sessions,
		c.commands,
		c.statusUpdates,
	)

	return c
}

func (c *Collector) RecordSpin(reward int64) {
	c.spins.WithLabelValues(strconv.FormatInt(reward, 10)).Inc()
	c.spinCoins.Add(float64(reward))
}

func (c *Collector) RecordRedemption(outcome string) {
	c.redemptions.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSession(kind, outcome string) {
	c.sessions.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) RecordCommand(command, result string) {
	c.commands.WithLabelValues(command, result).Inc()
}

func (c *Collector) RecordStatusUpdate(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.statusUpdates.WithLabelValues(result).Inc()
}

// Handler serves the gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
