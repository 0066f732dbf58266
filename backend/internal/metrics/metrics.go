// Package metrics exposes prometheus instrumentation for the knowledge store.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OperationsTotal counts API operations by name and outcome.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "knowledge_store",
		Name:      "operations_total",
		Help:      "API operations by operation name and status.",
	}, []string{"operation", "status"})

	// ValidationFailures counts rejected payloads by error kind.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "knowledge_store",
		Name:      "validation_failures_total",
		Help:      "Rejected payloads by error kind.",
	}, []string{"kind"})
)

// Handler adapts the prometheus HTTP handler for gin.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
