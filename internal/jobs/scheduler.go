// Package jobs runs the periodic status refresh and quiz trigger on cron.
package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Job is one periodic task. Run gets a context bounded by Timeout.
type Job struct {
	Name    string
	Every   time.Duration
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	return &Scheduler{cron: c}
}

func (s *Scheduler) Add(job Job) error {
	if job.Every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	if job.Run == nil {
		return fmt.Errorf("job %s: no run function", job.Name)
	}
	if _, err := s.cron.AddFunc("@every "+job.Every.String(), func() { runJob(job) }); err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}
	log.WithFields(log.Fields{"job": job.Name, "every": job.Every}).Info("[CRON] job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("[CRON] scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("[CRON] scheduler stopped")
}

// runJob executes one iteration. A failing or panicking job never takes the
// scheduler down with it.
func runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"component": "panic_recovery",
				"job":       job.Name,
				"panic":     fmt.Sprintf("%v", r),
				"stack":     string(debug.Stack()),
			}).Error("[CRON] job panicked")
		}
	}()

	ctx := context.Background()
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	if err := job.Run(ctx); err != nil {
		log.WithError(err).WithField("job", job.Name).Error("[CRON] job failed")
	}
}
