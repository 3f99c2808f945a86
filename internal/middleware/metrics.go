package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"devconnect/internal/observability"
)

// InitMetrics builds the HTTP metrics middleware on a dedicated registry that
// also exposes the runtime and application collectors.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(observability.Collectors()...)

	return fiberprometheus.NewWithRegistry(registry, serviceName, "http", "", nil)
}
