package scheduler

import (
	"fmt"
	"time"

	"replacementGame/pkg/logger"

	"github.com/go-co-op/gocron"
)

// Sweeper drops expired state and reports how much it removed.
type Sweeper interface {
	Sweep() int
}

// Scheduler runs housekeeping jobs in the background.
type Scheduler struct {
	scheduler *gocron.Scheduler
}

func New() *Scheduler {
	return &Scheduler{scheduler: gocron.NewScheduler(time.UTC)}
}

// EverySweep registers a sweep job on the given interval.
func (s *Scheduler) EverySweep(name string, interval time.Duration, sweeper Sweeper) error {
	_, err := s.scheduler.Every(interval).Do(func() {
		if removed := sweeper.Sweep(); removed > 0 {
			logger.Debug("sweep finished", "job", name, "removed", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	return nil
}

// Start runs the registered jobs without blocking.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
