package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survey_sessions_started_total",
			Help: "Total number of survey sessions started.",
		},
	)
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_turns_total",
			Help: "Total number of processed dialogue turns.",
		},
		[]string{"intent", "ui_action"},
	)
	turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "survey_turn_duration_seconds",
			Help:    "Histogram of full turn processing durations (transcription + oracle + synthesis).",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"ui_action"},
	)
	turnFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_turn_failures_total",
			Help: "Total number of turns failed on an upstream dependency.",
		},
		[]string{"stage"},
	)
	persistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survey_response_persist_failures_total",
			Help: "Total number of best-effort response persistence failures.",
		},
	)
)

// MetricsIncrementSessionStarted увеличивает счетчик созданных сессий.
func MetricsIncrementSessionStarted() {
	sessionsStartedTotal.Inc()
}

// MetricsRecordTurn записывает успешный ход.
func MetricsRecordTurn(intent, uiAction string, duration time.Duration) {
	turnsTotal.With(prometheus.Labels{"intent": intent, "ui_action": uiAction}).Inc()
	turnDuration.With(prometheus.Labels{"ui_action": uiAction}).Observe(duration.Seconds())
}

// MetricsIncrementTurnFailed записывает ход, упавший на внешней зависимости.
func MetricsIncrementTurnFailed(stage string) {
	turnFailuresTotal.With(prometheus.Labels{"stage": stage}).Inc()
}

// MetricsIncrementPersistFailed записывает неудачную попытку сохранения ответа.
func MetricsIncrementPersistFailed() {
	persistFailuresTotal.Inc()
}
