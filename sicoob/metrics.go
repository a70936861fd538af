package sicoob

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "sicoob"

type metrics struct {
	tokenRefreshes *prometheus.CounterVec
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

// newMetrics cria os coletores; com reg nil eles contam mas não são expostos
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_refreshes_total",
			Help:      "Trocas client-credentials realizadas, por resultado.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Requisições despachadas, por superfície e resultado.",
		}, []string{"surface", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Duração das requisições à API, por superfície.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"surface"}),
	}

	if reg != nil {
		m.tokenRefreshes = register(reg, m.tokenRefreshes)
		m.requests = register(reg, m.requests)
		m.duration = register(reg, m.duration)
	}
	return m
}

// register reaproveita o coletor já registrado quando dois clientes
// compartilham o mesmo registry
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observeTokenRefresh(ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	m.tokenRefreshes.WithLabelValues(result).Inc()
}

func (m *metrics) observeRequest(surface Surface, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).label()
	}
	m.requests.WithLabelValues(surface.String(), outcome).Inc()
	m.duration.WithLabelValues(surface.String()).Observe(elapsed.Seconds())
}

func (k ErrorKind) label() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindNotAcceptable:
		return "not_acceptable"
	case KindInternalServerError:
		return "internal_server_error"
	case KindCertificate:
		return "certificate"
	default:
		return "unclassified"
	}
}
