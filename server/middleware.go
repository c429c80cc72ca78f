package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"discover-server/metrics"
)

const REQUEST_ID_HEADER = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestID injects an identifier for traceability if the caller did not provide one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(REQUEST_ID_HEADER)
		if rid == "" {
			rid = uuid.NewString()
			r.Header.Set(REQUEST_ID_HEADER, rid)
		}
		w.Header().Set(REQUEST_ID_HEADER, rid)
		next.ServeHTTP(w, r)
	})
}

// Logging writes a concise structured line for each HTTP request and counts it
// per route template when reg is not nil.
func Logging(reg *metrics.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			latency := time.Since(start)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			if reg != nil {
				reg.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			}
			log.Printf("request_id=%s method=%s path=%s status=%d latency=%s",
				r.Header.Get(REQUEST_ID_HEADER), r.Method, r.URL.Path, rec.status, latency)
		})
	}
}
