// Package reconcile runs the periodic repair jobs: removing proposals whose
// project is gone and re-syncing denormalized display names.
package reconcile

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/metrics"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

const jobTimeout = 2 * time.Minute

type Job struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Result of one job run.
type Result struct {
	Job  string
	Rows int64
	Err  error
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	log  *zap.Logger
}

// Jobs returns the repair jobs over store. Each one is idempotent.
func Jobs(store repository.Store) []Job {
	return []Job{
		{Name: "orphan_proposals", Run: store.Proposals().DeleteOrphaned},
		{Name: "freelancer_names", Run: store.Proposals().SyncFreelancerNames},
		{Name: "client_names", Run: store.Projects().SyncClientNames},
	}
}

func NewScheduler(store repository.Store, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: Jobs(store),
		log:  log,
	}
}

// RunOnce runs every job in order. A failing job does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) []Result {
	out := make([]Result, 0, len(s.jobs))
	for _, job := range s.jobs {
		jctx, cancel := context.WithTimeout(ctx, jobTimeout)
		rows, err := job.Run(jctx)
		cancel()

		out = append(out, Result{Job: job.Name, Rows: rows, Err: err})
		if err != nil {
			s.log.Error("reconcile job failed", zap.String("job", job.Name), zap.Error(err))
			continue
		}
		metrics.RecordReconciled(job.Name, rows)
		if rows > 0 {
			s.log.Info("reconcile job fixed rows", zap.String("job", job.Name), zap.Int64("rows", rows))
		}
	}
	return out
}

// Start schedules RunOnce on spec (standard cron or "@every 15m").
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug("reconcile sweep starting")
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("reconcile scheduler started", zap.String("schedule", spec))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("reconcile scheduler stopped")
}
