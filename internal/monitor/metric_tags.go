package monitor

type MetricTag string

const (
	// RPCRequestDurationTag tracks how long an action invocation took, labeled by method and outcome.
	RPCRequestDurationTag MetricTag = "rpc_requests_duration_seconds"
	// RPCRequestCounterTag counts action invocations, labeled by method and outcome.
	RPCRequestCounterTag MetricTag = "rpc_requests_total"
	// HTTPRequestDurationTag tracks transport-level request durations.
	HTTPRequestDurationTag MetricTag = "requests_duration_seconds"
)

func (m MetricTag) ListAll() []MetricTag {
	return []MetricTag{
		RPCRequestDurationTag,
		RPCRequestCounterTag,
		HTTPRequestDurationTag,
	}
}

// RPCRequestLabels identify one action invocation outcome.
type RPCRequestLabels struct {
	Method  string
	Outcome string
}

// HttpRequestLabels identify one HTTP request.
type HttpRequestLabels struct {
	Status string
	Route  string
	Method string
}
