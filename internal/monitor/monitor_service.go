package monitor

import (
	"fmt"
	"net/http"
	"time"
)

type MonitorClient interface {
	GetMetricHttpHandler() http.Handler
	MonitorRPCRequestDuration(duration time.Duration, labels RPCRequestLabels)
	MonitorRPCRequestCount(labels RPCRequestLabels)
	MonitorHttpRequestDuration(duration time.Duration, labels HttpRequestLabels)
}

type MonitorServiceInterface interface {
	Start() error
	GetMetricHttpHandler() (http.Handler, error)
	MonitorRPCRequest(duration time.Duration, labels RPCRequestLabels) error
	MonitorHttpRequestDuration(duration time.Duration, labels HttpRequestLabels) error
}

var _ MonitorServiceInterface = (*MonitorService)(nil)

type MonitorService struct {
	MonitorClient MonitorClient
}

func (m *MonitorService) Start() error {
	if m.MonitorClient != nil {
		return fmt.Errorf("service already initialized")
	}

	monitorClient, err := NewPrometheusClient()
	if err != nil {
		return fmt.Errorf("creating monitor client: %w", err)
	}

	m.MonitorClient = monitorClient
	return nil
}

func (m *MonitorService) GetMetricHttpHandler() (http.Handler, error) {
	if m.MonitorClient == nil {
		return nil, fmt.Errorf("client was not initialized")
	}
	return m.MonitorClient.GetMetricHttpHandler(), nil
}

// MonitorRPCRequest records both the counter and the duration for one action invocation.
func (m *MonitorService) MonitorRPCRequest(duration time.Duration, labels RPCRequestLabels) error {
	if m.MonitorClient == nil {
		return fmt.Errorf("client was not initialized")
	}
	m.MonitorClient.MonitorRPCRequestCount(labels)
	m.MonitorClient.MonitorRPCRequestDuration(duration, labels)
	return nil
}

func (m *MonitorService) MonitorHttpRequestDuration(duration time.Duration, labels HttpRequestLabels) error {
	if m.MonitorClient == nil {
		return fmt.Errorf("client was not initialized")
	}
	m.MonitorClient.MonitorHttpRequestDuration(duration, labels)
	return nil
}
