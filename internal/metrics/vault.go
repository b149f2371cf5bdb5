package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vault client Prometheus metrics.
var (
	VaultRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fomoscore",
			Name:      "vault_requests_total",
			Help:      "Total number of vault API requests",
		},
		[]string{"endpoint", "status"},
	)

	VaultRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fomoscore",
			Name:      "vault_request_duration_seconds",
			Help:      "Vault API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"endpoint"},
	)

	FetchTierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fomoscore",
			Name:      "fetch_tier_total",
			Help:      "Fetch fallback-tier attempts by outcome",
		},
		[]string{"collection", "tier", "outcome"}, // outcome: "hit" / "miss"
	)

	IdentityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fomoscore",
			Name:      "identity_cache_total",
			Help:      "Identity-probe cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var vaultMetricsRegistered bool

// RegisterVaultMetrics registers vault Prometheus metrics. Must be called once from main.
func RegisterVaultMetrics() {
	if vaultMetricsRegistered {
		return
	}
	prometheus.MustRegister(VaultRequestsTotal)
	prometheus.MustRegister(VaultRequestDuration)
	prometheus.MustRegister(FetchTierTotal)
	prometheus.MustRegister(IdentityCacheTotal)
	vaultMetricsRegistered = true
}
