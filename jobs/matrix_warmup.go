package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	jobmetrics "github.com/meridian-crm/meridian-crm/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// MatrixWarmupJob reloads the permission matrix so the first request after a
// deploy or nightly restart does not pay the load.
type MatrixWarmupJob struct {
	Authz   *authz.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewMatrixWarmupJob wires dependencies for the warmup handler.
func NewMatrixWarmupJob(authzSvc *authz.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *MatrixWarmupJob {
	return &MatrixWarmupJob{Authz: authzSvc, Logger: logger, Metrics: metrics}
}

// Handle processes matrix warmup tasks.
func (j *MatrixWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Authz == nil {
		return errors.New("matrix warmup: handler not configured")
	}
	var payload MatrixWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskMatrixWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting matrix warmup", slog.Bool("force", payload.Force))

	catalog := j.Authz.Catalog()
	if payload.Force {
		catalog.Invalidate(ctx)
	}
	matrix, perms := catalog.Matrix(ctx)
	if len(perms) == 0 {
		resultErr = errors.New("matrix warmup: empty permission catalog")
		logger.Error("matrix warmup produced no catalog")
		return resultErr
	}

	logger.Info("completed matrix warmup",
		slog.Int("permissions", len(perms)),
		slog.Int("roles", len(matrix)))
	return resultErr
}

func (j *MatrixWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMatrixWarmup))
	}
	return slog.Default().With(slog.String("job", TaskMatrixWarmup))
}

func (j *MatrixWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
