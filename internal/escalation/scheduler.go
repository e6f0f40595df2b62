package escalation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the sweep periodically. Request-driven escalation works without it.
type Scheduler struct {
	policy   *Policy
	schedule string
	actor    ActorFunc
	logger   *logrus.Logger
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

func NewScheduler(policy *Policy, schedule string, actor ActorFunc, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{policy: policy, schedule: schedule, actor: actor, logger: logger}
}

// Start registers the job. A 5-field schedule gets a leading seconds field.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.actor == nil {
		return errors.New("escalation scheduler needs an actor")
	}

	schedule := s.schedule
	if schedule == "" {
		schedule = "0 0 * * * *"
	}
	if len(strings.Fields(schedule)) == 5 {
		schedule = "0 " + schedule
	}

	s.cron = cron.New(cron.WithSeconds())
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		s.logger.WithError(err).Error("Failed to schedule escalation sweep")
		return err
	}
	s.cron.Start()
	s.running = true

	s.logger.WithField("schedule", schedule).Info("Escalation scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("Escalation scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce performs one sweep as the configured actor.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	if s.actor == nil {
		return Result{}, ErrNoActor
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.policy.Sweep(ctx, actor, SourceScheduler)
}

func (s *Scheduler) run() {
	if _, err := s.RunOnce(context.Background()); err != nil {
		s.logger.WithError(err).Error("Scheduled escalation sweep failed")
	}
}
