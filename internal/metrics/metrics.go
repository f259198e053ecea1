package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_requests_total",
			Help: "Total number of chat messages relayed to the upstream backend",
		},
		[]string{"outcome"},
	)

	GatewayUpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_gateway_upstream_duration_seconds",
			Help:    "Duration of upstream conversational backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	DialogueResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_resolutions_total",
			Help: "Total number of dialogue tokens resolved, by resolution kind",
		},
		[]string{"kind"},
	)

	IntentMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_matches_total",
			Help: "Total number of free-text lookups, by result (matched or fallback)",
		},
		[]string{"result"},
	)

	KnowledgeTraining = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_training_total",
			Help: "Total number of knowledge base training requests, by status",
		},
		[]string{"status"},
	)
)
