package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIdHeader is the request correlation header set by clients.
const RequestIdHeader = "X-Request-Id"

// requestIdMiddleware assigns a request id if the client did not provide one.
func requestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIdHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(RequestIdHeader, id)
		}
		w.Header().Set(RequestIdHeader, id)

		next.ServeHTTP(w, r)
	})
}

// logMiddleware logs every API request.
func (s *EmployeeService) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		s.requestLog(r).WithField("status", sw.status).Infof("%s %s [%v]", r.Method, r.URL.Path, time.Since(start))
	})
}

// faultMiddleware injects the configured latency and random failures.
func (s *EmployeeService) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Latency > 0 {
			select {
			case <-time.After(s.cfg.Latency):
			case <-r.Context().Done():
				return
			}
		}

		if shouldFail(s.cfg.FailRate) {
			s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("injected failure"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
