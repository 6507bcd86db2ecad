// Package recorder writes user activity and audit entries off the request path.
package recorder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/user"
)

const writeTimeout = 5 * time.Second

// Recorder is fire-and-forget: a failed or dropped write is logged and never
// reaches the caller.
type Recorder struct {
	repo   activity.Repository
	pool   *WorkerPool
	logger *zap.Logger
	now    func() time.Time

	done chan struct{}
}

func New(repo activity.Repository, workers, buffer int, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		repo:   repo,
		pool:   NewWorkerPool(workers, buffer),
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Start launches the workers. Writes use their own timeout, independent of
// the request that produced them.
func (r *Recorder) Start(ctx context.Context) {
	results := r.pool.Run(ctx)
	go func() {
		defer close(r.done)
		for res := range results {
			if res.Err != nil {
				r.logger.Warn("activity write failed", zap.Error(res.Err))
			}
		}
	}()
}

// Close stops intake and waits for queued writes to finish.
func (r *Recorder) Close() {
	r.pool.Close()
	<-r.done
}

func (r *Recorder) Activity(p user.Principal, action activity.ActionType, description string, contactID, contactName string, meta map[string]any) {
	e := activity.Entry{
		UserID:      p.UserID,
		UserName:    p.Name,
		UserEmail:   p.Email,
		ActionType:  action,
		Description: description,
		ContactID:   contactID,
		ContactName: contactName,
		Metadata:    meta,
		CreatedAt:   r.now().UTC(),
	}
	r.submit(string(action), func(ctx context.Context) error {
		return r.repo.InsertActivity(ctx, e)
	})
}

func (r *Recorder) Audit(p user.Principal, action, entityType, entityID string, oldValues, newValues map[string]any) {
	a := activity.Audit{
		UserID:     p.UserID,
		UserName:   p.Name,
		UserEmail:  p.Email,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  r.now().UTC(),
	}
	r.submit(action, func(ctx context.Context) error {
		return r.repo.InsertAudit(ctx, a)
	})
}

func (r *Recorder) submit(action string, write func(ctx context.Context) error) {
	if r == nil || r.repo == nil {
		return
	}
	err := r.pool.TrySubmit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		return write(ctx)
	})
	if err != nil {
		r.logger.Warn("activity dropped", zap.String("action", action), zap.Error(err))
	}
}
