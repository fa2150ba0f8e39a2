package capture

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Frame outcome counters. Created against the global meter at package init;
// the SDK wires them up once the app installs its meter provider.
var (
	framesCaptured metric.Int64Counter
	frameFailures  metric.Int64Counter
)

func init() {
	meter := otel.Meter("capture-engine")
	framesCaptured, _ = meter.Int64Counter("captureplane.frames.captured",
		metric.WithDescription("Frames captured and written successfully"))
	frameFailures, _ = meter.Int64Counter("captureplane.frames.failures",
		metric.WithDescription("Frame captures that failed"))
}

func kindAttr(kind FrameKind) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("frame.kind", string(kind)))
}
