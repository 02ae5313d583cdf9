package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	emitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phlow_obs_emit_failures_total",
		Help: "Number of events whose emission panicked and was recovered.",
	})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phlow_auth_attempts_total",
		Help: "Authentication attempts by outcome.",
	}, []string{"outcome"})

	authDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phlow_auth_duration_seconds",
		Help:    "Duration of pipeline.Authenticate calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	rateLimitChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phlow_rate_limit_checks_total",
		Help: "Rate-limiter admission checks by outcome.",
	}, []string{"outcome"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phlow_breaker_transitions_total",
		Help: "Circuit breaker state transitions by breaker name and resulting state.",
	}, []string{"breaker", "state"})

	didResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phlow_did_resolutions_total",
		Help: "DID resolutions by cache outcome.",
	}, []string{"cache"})

	peerAPICalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phlow_peer_api_calls_total",
		Help: "Peer-messaging role-exchange calls by status.",
	}, []string{"status"})
)

// ObserveAuthDuration records one pipeline.Authenticate call's duration
// against the auth_duration histogram, labeled by outcome ("success" or a
// failure kind).
func ObserveAuthDuration(outcome string, seconds float64) {
	authDuration.WithLabelValues(outcome).Observe(seconds)
}

func recordMetric(kind EventKind, attrs map[string]any) {
	switch kind {
	case EventAuthSuccess:
		authAttempts.WithLabelValues("success").Inc()
	case EventAuthFailure:
		authAttempts.WithLabelValues(stringAttr(attrs, "reason", "unknown")).Inc()
	case EventRateLimitDenied:
		rateLimitChecks.WithLabelValues("denied").Inc()
	case EventRateLimitDegraded:
		rateLimitChecks.WithLabelValues("degraded").Inc()
	case EventBreakerOpened:
		breakerTransitions.WithLabelValues(stringAttr(attrs, "breaker", "unknown"), "open").Inc()
	case EventBreakerClosed:
		breakerTransitions.WithLabelValues(stringAttr(attrs, "breaker", "unknown"), "closed").Inc()
	case EventBreakerHalfOpenProbe:
		breakerTransitions.WithLabelValues(stringAttr(attrs, "breaker", "unknown"), "half_open").Inc()
	case EventDIDResolve:
		didResolutions.WithLabelValues(stringAttr(attrs, "cache", "miss")).Inc()
	case EventRoleVerified:
		peerAPICalls.WithLabelValues("verified").Inc()
	}
}

func stringAttr(attrs map[string]any, key, fallback string) string {
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
