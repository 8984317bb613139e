package common

import (
	"fmt"
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

type HealthCheckArgs struct {
	HealthPort    uint `arg:"--health-port,env:HEALTH_PORT" default:"8082"`
	MaxGoroutines int  `arg:"--max-goroutines,env:MAX_GOROUTINES" default:"10000"`
}

// NewHealthHandler serves /live and /ready. The service is live while its
// goroutine count stays under the configured threshold and ready once ready
// returns nil.
func NewHealthHandler(args HealthCheckArgs, ready func() error) healthcheck.Handler {
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(args.MaxGoroutines))
	health.AddReadinessCheck("service", healthcheck.Check(ready))
	return health
}

func StartHealthCheckServer(args HealthCheckArgs, ready func() error, logger *zap.Logger) {
	health := NewHealthHandler(args, ready)
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", args.HealthPort), health)
		if err != nil {
			logger.Fatal("health check server stopped unexpectedly", zap.Error(err))
		}
	}()
}
