// Package jobs runs the periodic housekeeping of the booking service on a
// cron schedule in the service timezone.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"umrahtransfer/internal/metrics"
	"umrahtransfer/internal/services"
	"umrahtransfer/internal/utils"
)

const (
	PurgeDrafts  = "purge_expired_drafts"
	CompletePast = "complete_past_bookings"

	jobTimeout = 5 * time.Minute
)

type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) (string, error)
}

// Standard returns the jobs the server schedules: expired drafts are
// purged hourly and finished trips are closed every half hour.
func Standard(bookings services.BookingService, drafts services.DraftService) []Job {
	return []Job{
		{
			Name: PurgeDrafts,
			Spec: "15 * * * *",
			Run: func(ctx context.Context) (string, error) {
				n, err := drafts.PurgeExpired(ctx)
				return fmt.Sprintf("purged=%d", n), err
			},
		},
		{
			Name: CompletePast,
			Spec: "*/30 * * * *",
			Run: func(ctx context.Context) (string, error) {
				n, err := bookings.CompletePast(ctx)
				return fmt.Sprintf("completed=%d", n), err
			},
		},
	}
}

type Scheduler struct {
	cron *cron.Cron
	jobs map[string]Job
	base context.Context
}

func New(loc *time.Location, jobs ...Job) (*Scheduler, error) {
	if loc == nil {
		loc = utils.ServiceLocation("")
	}
	l := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		jobs: make(map[string]Job, len(jobs)),
		base: context.Background(),
	}
	for _, j := range jobs {
		if _, dup := s.jobs[j.Name]; dup {
			return nil, fmt.Errorf("job %s registered twice", j.Name)
		}
		j := j
		if _, err := s.cron.AddFunc(j.Spec, func() { _ = s.execute(s.base, j) }); err != nil {
			return nil, fmt.Errorf("job %s: bad schedule %q: %w", j.Name, j.Spec, err)
		}
		s.jobs[j.Name] = j
	}
	return s, nil
}

func (s *Scheduler) Names() []string {
	out := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run starts the schedule and blocks until ctx is done, then waits for
// running jobs to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.base = ctx
	s.cron.Start()
	utils.LogEvent("", "jobs", "start", fmt.Sprintf("jobs=%v", s.Names()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	utils.LogEvent("", "jobs", "stop", "scheduler stopped")
	return nil
}

// Trigger runs one job now, outside the schedule.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q (known: %v)", name, s.Names())
	}
	return s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j Job) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	start := time.Now()
	summary, err := j.Run(ctx)
	metrics.JobRun(j.Name, err)
	if err != nil {
		utils.LogError("", "jobs", j.Name, err)
		return err
	}
	utils.LogEvent("", "jobs", j.Name, fmt.Sprintf("%s elapsed=%s", summary, time.Since(start).Round(time.Millisecond)))
	return nil
}

// cronLogger sends the scheduler's own messages to zap.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
