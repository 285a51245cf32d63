package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// SubmissionsProcessed counts pipeline runs by outcome:
	// valid, invalid, malformed, infra_error
	SubmissionsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proof_submissions_processed_total",
			Help: "Submissions processed by outcome",
		},
		[]string{"source", "outcome"},
	)

	// FingerprintsClassified counts fingerprints by uniqueness class
	FingerprintsClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proof_fingerprints_classified_total",
			Help: "Content fingerprints classified as new or seen",
		},
		[]string{"source", "class"},
	)

	// FingerprintLocalCacheHits counts fingerprints already observed by
	// this process, detected by the LRU fast path in front of the filter
	FingerprintLocalCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proof_fingerprint_local_cache_hits_total",
			Help: "Fingerprints already observed by this process lifetime",
		},
		[]string{"source"},
	)

	// PipelineDuration observes end-to-end proof generation time
	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proof_pipeline_duration_seconds",
			Help:    "End-to-end proof generation duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CollaboratorErrors counts external service failures by service name
	CollaboratorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proof_collaborator_errors_total",
			Help: "External collaborator failures",
		},
		[]string{"service"},
	)
)

func init() {
	prometheus.MustRegister(SubmissionsProcessed)
	prometheus.MustRegister(FingerprintsClassified)
	prometheus.MustRegister(FingerprintLocalCacheHits)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(CollaboratorErrors)
}

// StartServer exposes /metrics on the given port
func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Infof("Metrics server listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("Metrics server failed: %v", err)
		}
	}()
}
