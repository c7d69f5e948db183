package main

import (
	"errors"

	somfy "github.com/caarlos0/somfy-bridge"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace:   "somfy_bridge",
	Subsystem:   "panel",
	Name:        "requests_total",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"operation"})

var requestErrorCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace:   "somfy_bridge",
	Subsystem:   "panel",
	Name:        "request_errors_total",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"operation", "kind"})

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace:   "somfy_bridge",
	Subsystem:   "panel",
	Name:        "request_duration_seconds",
	Help:        "",
	ConstLabels: map[string]string{},
	Buckets:     []float64{.25, .5, 1, 2, 5, 10, 30},
}, []string{"operation"})

func errorKind(err error) string {
	var verr *somfy.VendorError
	switch {
	case errors.As(err, &verr):
		return "vendor"
	case errors.Is(err, somfy.ErrMalformedLoginPage), errors.Is(err, somfy.ErrInvalidAuthCode):
		return "auth"
	case errors.Is(err, somfy.ErrSectionNotFound):
		return "parse"
	case somfy.IsDomainError(err):
		return "other"
	default:
		return "transport"
	}
}
