package service

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "inventory"

type Metrics struct {
	Created         prometheus.Counter
	Updated         prometheus.Counter
	QuantityUpdates prometheus.Counter
	StoreFallbacks  prometheus.Counter
	Alerts          *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "products_created_total",
			Help:      "Total number of products created",
		}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "products_updated_total",
			Help:      "Total number of product updates, quantity updates included",
		}),
		QuantityUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "quantity_updates_total",
			Help:      "Total number of quantity updates",
		}),
		StoreFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_fallback_writes_total",
			Help:      "Total number of writes served by the in-memory fallback store",
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "alerts_total",
			Help:      "Total number of inventory alerts raised",
		}, []string{"stock_level"}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "publish_failures_total",
			Help:      "Total number of events that could not be published",
		}, []string{"topic"}),
	}
	reg.MustRegister(m.Created, m.Updated, m.QuantityUpdates, m.StoreFallbacks, m.Alerts, m.PublishFailures)
	return m
}
