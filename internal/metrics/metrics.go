package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Triggers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "image_variants",
		Name:      "triggers_total",
		Help:      "Classified triggers by outcome.",
	}, []string{"outcome"})
	Generated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "image_variants",
		Name:      "generated_total",
		Help:      "Variants written, by resolution label.",
	}, []string{"label"})
	GenerationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "image_variants",
		Name:      "generation_failures_total",
		Help:      "Failed generations by reason.",
	}, []string{"reason"})
	GenerationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "image_variants",
		Name:      "generation_seconds",
		Help:      "Wall time of fetch, transcode and persist.",
		Buckets:   prometheus.DefBuckets,
	})
	CascadeDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "image_variants",
		Name:      "cascade_deleted_total",
		Help:      "Derived objects removed by deletion cascades.",
	})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(Triggers, Generated, GenerationFailures, GenerationSeconds, CascadeDeleted)
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Blocks; run in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
