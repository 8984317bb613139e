package common

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PrometheusArgs struct {
	MetricsPort uint `arg:"--metrics-port,env:METRICS_PORT" default:"2112"`
}

type PprofArgs struct {
	PprofPort uint `arg:"--pprof-port,env:PPROF_PORT" default:"6060"`
}

func StartPromMetricsServer(port uint, logger *zap.Logger) {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), router)
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("metric server stopped unexpectedly", zap.Error(err))
		}
	}()
}

// StartPprofServer serves the net/http/pprof endpoints registered on the
// default mux.
// Ref: https://pkg.go.dev/net/http/pprof
func StartPprofServer(port uint, logger *zap.Logger) {
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
		logger.Warn("pprof server stopped", zap.Error(err))
	}()
}
