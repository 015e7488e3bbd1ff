package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/workstack/workforce-management/pkg/logger"
)

// TraceHeader carries the request id across hops; an inbound value is
// trusted so a gateway can stitch its own traces through.
const TraceHeader = "X-Trace-ID"

// RequestID tags every request with a trace id, stamps it on the response
// and enriches the context logger so downstream log lines carry it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
