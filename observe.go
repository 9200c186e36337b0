package talkingdb

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talkingdb/internal/metrics"
)

// observer provides logging and metrics for client operations.
type observer struct {
	logger  *zap.Logger
	metrics *metrics.Client
}

func (o *observer) observe(op, worker string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	o.metrics.Operation(op, dur, err)

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed",
			zap.String("op", op),
			zap.String("worker", worker),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("operation completed",
		zap.String("op", op),
		zap.String("worker", worker),
		zap.Duration("duration", dur),
	)
}
