package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"file-conversion-server/internal/domain"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDContextKey contextKey = "request_id"
	requestIDHeader                = "X-Request-ID"
)

// RequestIDFromContext returns the request id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// RequestID tags every request with an id, reusing an inbound X-Request-ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// fieldLogger is a logger that can bind fields to every later record.
type fieldLogger interface {
	With(fields ...interface{}) domain.Logger
}

// requestLogger binds the request id to logger, or returns it as a field
// pair when logger cannot carry bound fields.
func requestLogger(logger domain.Logger, id string) (domain.Logger, []interface{}) {
	if fl, ok := logger.(fieldLogger); ok {
		return fl.With("request_id", id), nil
	}
	return logger, []interface{}{"request_id", id}
}

// RequestLogger logs one line per request and turns panics into a JSON 500.
func RequestLogger(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			log, idFields := requestLogger(logger, RequestIDFromContext(r.Context()))

			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error("Panic while handling request", fmt.Errorf("%v", p),
						append([]interface{}{"method", r.Method, "path", r.URL.Path}, idFields...)...)
					if rec.status == 0 {
						writeError(rec, http.StatusInternalServerError, "Internal server error")
					}
				}
				log.Info("Request handled", append([]interface{}{
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"bytes", rec.bytes,
					"duration_ms", time.Since(start).Milliseconds(),
				}, idFields...)...)
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
