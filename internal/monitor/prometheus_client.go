package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusClient struct {
	httpHandler http.Handler
}

var SummaryVecMetrics = map[MetricTag]*prometheus.SummaryVec{
	RPCRequestDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "anchor_platform", Name: string(RPCRequestDurationTag),
		Help: "RPC action invocation durations",
	},
		[]string{"method", "outcome"},
	),
	HTTPRequestDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "anchor_platform", Name: string(HTTPRequestDurationTag),
		Help: "HTTP request durations",
	},
		[]string{"status", "route", "method"},
	),
}

var CounterVecMetrics = map[MetricTag]*prometheus.CounterVec{
	RPCRequestCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anchor_platform", Name: string(RPCRequestCounterTag),
		Help: "RPC action invocations",
	},
		[]string{"method", "outcome"},
	),
}

// NewPrometheusClient registers the metric vectors on a dedicated registry
// and returns the client serving them.
func NewPrometheusClient() (MonitorClient, error) {
	registry := prometheus.NewRegistry()
	for _, summaryVec := range SummaryVecMetrics {
		registry.MustRegister(summaryVec)
	}
	for _, counterVec := range CounterVecMetrics {
		registry.MustRegister(counterVec)
	}

	return &prometheusClient{
		httpHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

func (p *prometheusClient) GetMetricHttpHandler() http.Handler {
	return p.httpHandler
}

func (p *prometheusClient) MonitorRPCRequestDuration(duration time.Duration, labels RPCRequestLabels) {
	SummaryVecMetrics[RPCRequestDurationTag].With(prometheus.Labels{
		"method":  labels.Method,
		"outcome": labels.Outcome,
	}).Observe(duration.Seconds())
}

func (p *prometheusClient) MonitorRPCRequestCount(labels RPCRequestLabels) {
	CounterVecMetrics[RPCRequestCounterTag].With(prometheus.Labels{
		"method":  labels.Method,
		"outcome": labels.Outcome,
	}).Inc()
}

func (p *prometheusClient) MonitorHttpRequestDuration(duration time.Duration, labels HttpRequestLabels) {
	SummaryVecMetrics[HTTPRequestDurationTag].With(prometheus.Labels{
		"status": labels.Status,
		"route":  labels.Route,
		"method": labels.Method,
	}).Observe(duration.Seconds())
}
