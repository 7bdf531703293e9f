package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of proxied upstream calls, labelled by upstream service
	ProxyUpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_upstream_latency_seconds",
		Help:    "Latency of proxied upstream requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"upstream"})

	// Total proxied requests by upstream service and response code
	ProxyRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_proxy_requests_total",
		Help: "Total number of proxied requests",
	}, []string{"upstream", "code"})

	// Checkout attempts by terminal state
	CheckoutAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_checkout_attempts_total",
		Help: "Total number of checkout attempts by terminal state",
	}, []string{"state"})
)

func Init() {
	prometheus.MustRegister(
		ProxyUpstreamLatency,
		ProxyRequests,
		CheckoutAttempts,
	)
}
