package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	jobmetrics "github.com/meridian-crm/meridian-crm/internal/jobs"
	"github.com/meridian-crm/meridian-crm/internal/users"
)

// FieldUserSource lists the accounts whose scopes the prewarm pass resolves.
type FieldUserSource interface {
	ListActiveFieldUsers(ctx context.Context) ([]users.User, error)
}

// ScopePrewarmJob resolves the customer portfolio of every active field
// account. Portfolios that come back empty usually mean a directory row is
// missing for the rep, so the job counts and logs them.
type ScopePrewarmJob struct {
	Authz   *authz.Service
	Users   FieldUserSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewScopePrewarmJob wires dependencies for the prewarm handler.
func NewScopePrewarmJob(authzSvc *authz.Service, source FieldUserSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *ScopePrewarmJob {
	return &ScopePrewarmJob{Authz: authzSvc, Users: source, Logger: logger, Metrics: metrics}
}

// Handle processes scope prewarm tasks.
func (j *ScopePrewarmJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Authz == nil || j.Users == nil {
		return errors.New("scope prewarm: handler not configured")
	}
	var payload ScopePrewarmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskScopePrewarm)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting scope prewarm")

	accounts, err := j.Users.ListActiveFieldUsers(ctx)
	if err != nil {
		resultErr = err
		logger.Error("list field users", slog.Any("error", err))
		return resultErr
	}

	wanted := roleFilter(payload.Roles)
	warmed := 0
	empty := 0
	for _, account := range accounts {
		if wanted != nil {
			if _, ok := wanted[string(account.Role)]; !ok {
				continue
			}
		}
		scope := j.warmAccount(ctx, account)
		warmed++
		if scope.IsEmpty() {
			empty++
			j.metrics().AddEmptyPortfolios(string(account.Role), account.Country, 1)
			logger.Warn("field account has no customers",
				slog.Int64("user_id", account.ID),
				slog.String("role", string(account.Role)),
				slog.String("rep_id", account.RepID),
				slog.String("country", account.Country))
		}
	}

	logger.Info("completed scope prewarm",
		slog.Int("accounts", warmed),
		slog.Int("empty_portfolios", empty))
	return resultErr
}

func (j *ScopePrewarmJob) warmAccount(ctx context.Context, account users.User) authz.Scope[string] {
	// Bound each account so one slow directory country cannot stall the
	// whole pass.
	accountCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	principal := account.Principal()
	return j.Authz.For(principal).AccessibleCustomerNumbers(accountCtx)
}

func roleFilter(roles []string) map[string]struct{} {
	if len(roles) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		wanted[role] = struct{}{}
	}
	return wanted
}

func (j *ScopePrewarmJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskScopePrewarm))
	}
	return slog.Default().With(slog.String("job", TaskScopePrewarm))
}

func (j *ScopePrewarmJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
