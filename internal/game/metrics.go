package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evidenceAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coldcase_evidence_analyzed_total",
		Help: "Evidence items the lab finished analyzing.",
	})
	labQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coldcase_lab_queue_length",
		Help: "Jobs in the evidence lab pipeline, including the one being analyzed.",
	})
	contradictionsCaught = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coldcase_contradictions_caught_total",
		Help: "Contradictions caught for the first time.",
	})
	newsRevealed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coldcase_news_revealed_total",
		Help: "Breaking news items revealed.",
	})
	timersExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coldcase_timers_expired_total",
		Help: "Case timers that ran out.",
	})
	accusations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coldcase_accusations_total",
		Help: "Accusations by outcome.",
	}, []string{"outcome"})
	casesImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coldcase_cases_imported_total",
		Help: "Case imports by result.",
	}, []string{"result"})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coldcase_tick_duration_seconds",
		Help:    "Time spent advancing the lab and the case timer by one tick.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), //nolint:mnd // 100µs to ~1.6s
	})
)

const (
	outcomeCorrect   = "correct"
	outcomeIncorrect = "incorrect"
	resultAccepted   = "accepted"
	resultRejected   = "rejected"
)
