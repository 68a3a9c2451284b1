// Package scheduler runs the pipeline on a standing cadence. Next-fire
// computation is pure so the cadence rules are testable without clocks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/services"
)

const clockLayout = "15:04"

// Next computes the next fire time strictly after now for the given
// schedule. Times are interpreted in now's location.
func Next(now time.Time, sched config.Schedule) (time.Time, error) {
	switch sched.Type {
	case config.ScheduleDaily:
		return nextAtClock(now, []string{sched.Time})
	case config.ScheduleHourly:
		// Wall-clock top of the hour; Truncate would misalign in
		// fractional-offset zones.
		top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
		return top.Add(time.Hour), nil
	case config.ScheduleEveryNHours:
		interval := sched.IntervalHours
		if interval <= 0 {
			interval = 1
		}
		return now.Add(time.Duration(interval) * time.Hour), nil
	case config.ScheduleCustom:
		return nextAtClock(now, sched.Times)
	default:
		return time.Time{}, services.Wrap(services.ErrConfiguration, "scheduler", "next",
			fmt.Sprintf("unknown schedule type %q", sched.Type), nil)
	}
}

// nextAtClock returns the earliest clock time from entries occurring
// strictly after now, rolling into the next day when all have passed.
func nextAtClock(now time.Time, entries []string) (time.Time, error) {
	if len(entries) == 0 {
		return time.Time{}, services.Wrap(services.ErrConfiguration, "scheduler", "next", "no schedule times configured", nil)
	}
	candidates := make([]time.Time, 0, len(entries)*2)
	for _, entry := range entries {
		parsed, err := time.Parse(clockLayout, entry)
		if err != nil {
			return time.Time{}, services.Wrap(services.ErrConfiguration, "scheduler", "next",
				fmt.Sprintf("invalid schedule time %q", entry), err)
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		candidates = append(candidates, today, today.AddDate(0, 0, 1))
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
	for _, candidate := range candidates {
		if candidate.After(now) {
			return candidate, nil
		}
	}
	return time.Time{}, services.Wrap(services.ErrConfiguration, "scheduler", "next", "no future schedule time", nil)
}

// Scheduler fires a run function on the configured cadence.
type Scheduler struct {
	sched  config.Schedule
	run    func(ctx context.Context) error
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a scheduler around a run callback.
func New(sched config.Schedule, run func(ctx context.Context) error, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sched:  sched,
		run:    run,
		logger: logging.WithComponent(logger, "scheduler"),
		now:    time.Now,
	}
}

// Run loops until ctx is cancelled. Each scheduled run executes
// synchronously; a failed run is logged and the cadence continues.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler starting",
		logging.String("type", s.sched.Type),
		logging.Bool("run_on_start", s.sched.RunOnStart),
	)

	if s.sched.RunOnStart {
		s.invoke(ctx)
	}

	for {
		next, err := Next(s.now(), s.sched)
		if err != nil {
			return err
		}
		wait := time.Until(next)
		s.logger.Info("next run scheduled",
			logging.String("at", next.Format(time.RFC3339)),
			logging.Duration("in", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		s.invoke(ctx)
	}
}

func (s *Scheduler) invoke(ctx context.Context) {
	if err := s.run(ctx); err != nil {
		s.logger.Error("scheduled run failed", logging.Error(err))
		return
	}
	s.logger.Info("scheduled run complete")
}
