// Package metrics exports simulation counters in the Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ppsim"

// Collector records orchestrator activity. It satisfies control.Observer.
type Collector struct {
	reg *prometheus.Registry

	ticks      prometheus.Counter
	tickTime   prometheus.Histogram
	population prometheus.Gauge
	changes    *prometheus.CounterVec
}

// New returns a Collector registered on its own registry, together with the
// Go runtime collectors.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Completed simulation ticks.",
		}),
		tickTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_seconds",
			Help:      "Wall time spent in one simulation step.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population",
			Help:      "Particles in the store after the last tick.",
		}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Applied state requests by outcome.",
		}, []string{"outcome"}),
	}
	c.reg.MustRegister(
		c.ticks, c.tickTime, c.population, c.changes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveTick records one completed tick.
func (c *Collector) ObserveTick(d time.Duration, population int) {
	c.ticks.Inc()
	c.tickTime.Observe(d.Seconds())
	c.population.Set(float64(population))
}

// ObserveChange counts one drained request.
func (c *Collector) ObserveChange(outcome string) {
	c.changes.WithLabelValues(outcome).Inc()
}

// Handler serves the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr under /metrics. The returned server is
// already listening in the background; errors other than a clean shutdown are
// sent on the channel.
func (c *Collector) Serve(addr string) (*http.Server, <-chan error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()
	return srv, errc
}
