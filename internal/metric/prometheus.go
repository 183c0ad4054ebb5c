package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

var (
	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart mutations by operation and whether they changed the cart.",
	}, []string{"operation", "effective"})

	CatalogFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "fetches_total",
		Help:      "Catalog source fetches by source, call and result.",
	}, []string{"source", "call", "result"})

	CatalogCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "cache_lookups_total",
		Help:      "Catalog cache lookups by result.",
	}, []string{"result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions currently held in memory.",
	})
)

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
