// Package metrics, Prometheus sayaçlarını tanımlar. /metrics route'u
// promhttp.Handler ile default registry'yi yayınlar.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ban kaynakları.
const (
	SourceAdmin      = "admin"      // admin panelinden
	SourceEscalation = "escalation" // warn eşiği aşımı
	SourceAPI        = "api"        // RecordBan'in doğrudan çağrısı
)

var (
	BansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_bans_total",
			Help: "Number of ban requests recorded, by source",
		},
		[]string{"source"},
	)

	BansMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_bans_merged_total",
			Help: "Ban requests merged into an existing active ban, by result (updated, unchanged)",
		},
		[]string{"result"},
	)

	WarnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_warns_total",
		Help: "Number of warns stored",
	})

	WarnsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_warns_skipped_total",
		Help: "Warns ignored because the receiver was already banned",
	})

	Escalations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_escalations_total",
		Help: "Warn threshold escalations into a permanent ban",
	})

	BansPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_bans_purged_total",
		Help: "Expired bans deleted by the retention sweep",
	})

	LoginRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_rejected_total",
			Help: "Rejected login attempts, by reason (credentials, banned, rate_limited)",
		},
		[]string{"reason"},
	)
)
