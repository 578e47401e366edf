// Package telemetry holds the OpenTelemetry instruments recorded by the onboarding pipeline.
// Instruments come from the global meter provider and are no-ops until an SDK is installed.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "onboarding"

// Metrics holds all pipeline metric instruments.
type Metrics struct {
	OTPIssued          metric.Int64Counter
	OTPRejected        metric.Int64Counter
	VerifyFailed       metric.Int64Counter
	AnalysisFailed     metric.Int64Counter
	TenantsProvisioned metric.Int64Counter
	FetchDuration      metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.OTPIssued, err = meter.Int64Counter("onboarding.otp.issued",
		metric.WithDescription("Verification codes issued"))
	if err != nil {
		return nil, err
	}

	m.OTPRejected, err = meter.Int64Counter("onboarding.otp.rejected",
		metric.WithDescription("Code requests rejected by validation or rate limit"))
	if err != nil {
		return nil, err
	}

	m.VerifyFailed, err = meter.Int64Counter("onboarding.verify.failed",
		metric.WithDescription("Verifications with a missing, expired or wrong code"))
	if err != nil {
		return nil, err
	}

	m.AnalysisFailed, err = meter.Int64Counter("onboarding.analysis.failed",
		metric.WithDescription("Website analyses that failed after a successful verification"))
	if err != nil {
		return nil, err
	}

	m.TenantsProvisioned, err = meter.Int64Counter("onboarding.tenants.provisioned",
		metric.WithDescription("Completed provisioning runs"))
	if err != nil {
		return nil, err
	}

	m.FetchDuration, err = meter.Float64Histogram("onboarding.fetch.duration_seconds",
		metric.WithDescription("Website fetch latency in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// MustNewMetrics is NewMetrics for wiring and tests; the global meter never fails
// to create instruments with static names.
func MustNewMetrics() *Metrics {
	m, err := NewMetrics()
	if err != nil {
		panic("telemetry: " + err.Error())
	}
	return m
}
