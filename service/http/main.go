package main

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	httplib "discover/lib/http"
	"discover/pcache"
	"discover/service/common"
	"discover/tier"

	"github.com/alexflint/go-arg"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// ------------------------ START metric definitions ----------------------------

var totalRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of incoming HTTP requests.",
	},
	[]string{"path"},
)

var responseStatus = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "response_status",
		Help: "Status of HTTP response",
	},
	[]string{"path", "status"},
)

var httpDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
	Name: "http_response_time_seconds",
	Help: "Duration of HTTP requests.",
	// Track quantiles within small error
	Objectives: map[float64]float64{
		0.50: 0.05,
		0.90: 0.05,
		0.99: 0.01,
	},
}, []string{"path"})

// ------------------------ END metric definitions ------------------------------

// response writer to capture status code from header.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

// middleware to count requests by route template and record response codes
// and latency.
func prometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		totalRequests.WithLabelValues(path).Inc()
		timer := prometheus.NewTimer(httpDuration.WithLabelValues(path))
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		timer.ObserveDuration()
		responseStatus.WithLabelValues(path, strconv.Itoa(rw.statusCode)).Inc()
	})
}

type ServerArgs struct {
	RequestTimeout        time.Duration `arg:"--request-timeout,env:REQUEST_TIMEOUT" default:"2s"`
	MaxConcurrentRequests int           `arg:"--max-concurrent-requests,env:MAX_CONCURRENT_REQUESTS" default:"1000"`
}

func newRouter(s server, args ServerArgs) *mux.Router {
	router := mux.NewRouter()
	router.Use(prometheusMiddleware)
	router.Use(httplib.TimeoutMiddleware(args.RequestTimeout))
	router.Use(httplib.RateLimitingMiddleware(args.MaxConcurrentRequests))
	s.setHandlers(router)
	return router
}

func main() {
	// Parse flags / environment variables.
	var flags struct {
		tier.TierArgs
		ServerArgs
		common.PrometheusArgs
		common.PprofArgs
		common.HealthCheckArgs
	}
	arg.MustParse(&flags)
	tr, err := tier.CreateFromArgs(&flags.TierArgs)
	if err != nil {
		panic(fmt.Sprintf("Failed to setup tier: %v", err))
	}
	defer tr.Close()
	logger := tr.Logger

	common.StartPromMetricsServer(flags.MetricsPort, logger)
	common.StartPprofServer(flags.PprofPort, logger)
	common.StartHealthCheckServer(flags.HealthCheckArgs, func() error { return nil }, logger)

	stop := make(chan struct{})
	defer close(stop)
	pcache.ReportPeriodically(tr.OptionsCache, time.Minute, stop)

	router := newRouter(server{tier: tr}, flags.ServerArgs)

	addr := fmt.Sprintf(":%d", httplib.PORT)
	logger.Info("starting http service", zap.String("addr", addr))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", addr), zap.Error(err))
	}

	logger.Info("server is ready...")

	if err = http.Serve(l, router); err != http.ErrServerClosed {
		logger.Error("server stopped", zap.Error(err))
	}
}
