package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// New returns a JSON logger that stamps every entry with the service name and,
// when the entry carries a context with an active span, the trace and span ids.
func New(service, level string) *logrus.Logger {
	return NewWithOutput(service, level, os.Stdout)
}

func NewWithOutput(service, level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.AddHook(&fieldsHook{service: service})
	return l
}

type fieldsHook struct {
	service string
}

func (h *fieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fieldsHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = h.service
	if e.Context == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(e.Context)
	if sc.IsValid() {
		e.Data["trace_id"] = sc.TraceID().String()
		e.Data["span_id"] = sc.SpanID().String()
	}
	if reqID := middleware.GetReqID(e.Context); reqID != "" {
		e.Data["request_id"] = reqID
	}
	return nil
}

// RequestLogger logs one line per request after the handler returns.
func RequestLogger(l logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				entry := l.WithFields(logrus.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      ww.Status(),
					"bytes":       ww.BytesWritten(),
					"duration_ms": time.Since(start).Milliseconds(),
				}).WithContext(r.Context())
				if ww.Status() >= http.StatusInternalServerError {
					entry.Warn("request completed")
					return
				}
				entry.Info("request completed")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
