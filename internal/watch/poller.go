package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Poller triggers periodic rebuilds.
type Poller struct {
	scheduler gocron.Scheduler
}

// NewPoller schedules trigger every interval. The scheduler is not started.
func NewPoller(interval time.Duration, trigger func()) (*Poller, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(trigger),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	return &Poller{scheduler: s}, nil
}

// Start begins the schedule.
func (p *Poller) Start() {
	slog.Info("Starting periodic rebuild scheduler")
	p.scheduler.Start()
}

// Stop shuts the scheduler down.
func (p *Poller) Stop() error {
	return p.scheduler.Shutdown()
}
