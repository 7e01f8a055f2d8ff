package httpx

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// statusRecorder captures what the handler chain wrote, plus the visitor
// resolved further down the chain, for the access log line.
type statusRecorder struct {
	http.ResponseWriter
	status    int
	bytes     int64
	committed bool
	visitorID string
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.committed {
		return
	}
	rec.status = code
	rec.committed = true
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.committed {
		rec.WriteHeader(http.StatusOK)
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// headerCommitted reports whether w is a recorder that already sent headers.
func headerCommitted(w http.ResponseWriter) bool {
	rec, ok := w.(*statusRecorder)
	return ok && rec.committed
}

// noteVisitor tells an enclosing access log which visitor the request
// belongs to.
func noteVisitor(w http.ResponseWriter, visitorID string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.visitorID = visitorID
	}
}

func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest && status != http.StatusNotFound:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func AccessLogMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			if ce := log.Check(levelForStatus(rec.status), "access"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", rec.status),
					zap.Int64("bytes", rec.bytes),
					zap.Int64("duration_ms", time.Since(start).Milliseconds()),
					zap.String("request_id", RequestIDFrom(r)),
					zap.String("visitor_id", rec.visitorID),
				)
			}
		})
	}
}
