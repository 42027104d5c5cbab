package serve

import (
	"net/http"
	"runtime"
	"strconv"
	"time"
)

// metricsMiddleware tracks HTTP request metrics
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Track in-flight requests
		s.registry.HTTPRequestsInFlight.Inc()
		defer s.registry.HTTPRequestsInFlight.Dec()

		// Create a response writer wrapper to capture status code and size
		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			bytesWritten:   0,
		}

		// Process request
		next.ServeHTTP(wrapper, r)

		// Record metrics
		duration := time.Since(start)
		statusStr := strconv.Itoa(wrapper.statusCode)

		s.registry.RecordHTTPRequest(r.Method, r.URL.Path, statusStr, duration)
		s.registry.HTTPResponseSizeBytes.WithLabelValues(r.Method, r.URL.Path).Observe(float64(wrapper.bytesWritten))
	})
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *metricsResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// updateMetricsPeriodically refreshes system and graph gauges every 10 seconds
func (s *Server) updateMetricsPeriodically(stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Update uptime
			s.registry.UptimeSeconds.Set(time.Since(s.startTime).Seconds())

			// Update Go runtime metrics
			s.registry.GoRoutines.Set(float64(runtime.NumGoroutine()))

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.registry.MemoryAllocBytes.Set(float64(m.Alloc))
			s.registry.MemorySysBytes.Set(float64(m.Sys))

			// Update graph gauges
			s.registry.UpdateGraphMetrics(
				s.assembler.VertexCount(),
				s.assembler.EdgeCount(),
				s.assembler.Warnings(),
				s.assembler.LastBuild(),
			)
		}
	}
}
