package server

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests  *prometheus.CounterVec
	duration  prometheus.Histogram
	zeroFills prometheus.Counter
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "osis_predict_requests_total",
			Help: "Prediction requests by HTTP status code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "osis_predict_duration_seconds",
			Help:    "Prediction handler latency.",
			Buckets: prometheus.DefBuckets,
		}),
		zeroFills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osis_feature_zero_fills_total",
			Help: "Features zero-filled because the model artifact expects columns the transform does not produce.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.zeroFills)
	return m
}
