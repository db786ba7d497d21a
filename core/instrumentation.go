package commentary

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const scopeName = "github.com/castwerk/booth-core/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	metricTurnsDispatched, _ = meter.Int64Counter("booth.turns.dispatched")
	metricLinesReleased, _   = meter.Int64Counter("booth.lines.released")
	metricFallbacksServed, _ = meter.Int64Counter("booth.fallbacks.served")
)
