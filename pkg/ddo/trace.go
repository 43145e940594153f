package ddo

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gitrdm/ddo"

// startRun opens the span of one search and allocates its run id. Without a
// registered TracerProvider the global no-op tracer is used.
func startRun(ctx context.Context, driver string, nbVars int, minimize bool) (context.Context, trace.Span, string) {
	runID := uuid.New().String()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ddo.Solve",
		trace.WithAttributes(
			attribute.String("ddo.run_id", runID),
			attribute.String("ddo.driver", driver),
			attribute.Int("ddo.nb_vars", nbVars),
			attribute.Bool("ddo.minimize", minimize),
		),
	)
	return ctx, span, runID
}

func traceIncumbent(span trace.Span, value float64, iteration int) {
	span.AddEvent("incumbent", trace.WithAttributes(
		attribute.Float64("ddo.value", value),
		attribute.Int("ddo.iteration", iteration),
	))
}

func traceFailure(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func endRun(span trace.Span, st SearchStatistics) {
	span.SetAttributes(
		attribute.String("ddo.status", st.Status.String()),
		attribute.Int("ddo.iterations", st.Iterations),
		attribute.Int("ddo.max_frontier_size", st.MaxFrontierSize),
		attribute.Bool("ddo.has_incumbent", st.HasIncumbent),
	)
	if st.HasIncumbent {
		span.SetAttributes(attribute.Float64("ddo.incumbent", st.Incumbent))
	}
	span.End()
}
