package observability

// Metric keys for the RED instrumentation surface. Use cases and the HTTP edge
// both record a request counter and a latency histogram; calls that leave the
// process (the payment gateway) get their own pair with peer/endpoint labels.
const (
	// use case layer: labels use_case, outcome
	MUsecaseRequests MetricKey = "usecase_requests_total"
	MUsecaseDuration MetricKey = "usecase_duration_seconds"

	// HTTP edge: labels method, route, status
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"

	// outbound calls: labels peer, endpoint, outcome
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
)
