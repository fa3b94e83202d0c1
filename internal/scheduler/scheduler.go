// Package scheduler orchestrates one monitoring run: fetch, filter, diff,
// notify, persist.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"usos_monitor/internal/config"
	"usos_monitor/internal/conflict"
	"usos_monitor/internal/diff"
	"usos_monitor/internal/model"
	"usos_monitor/internal/notify"
	"usos_monitor/internal/schedule"
	"usos_monitor/internal/slot"
	"usos_monitor/internal/storage"
)

// GroupSource fetches raw course groups from the registration site.
type GroupSource interface {
	Login(ctx context.Context, username, password string) error
	FetchGroups(ctx context.Context, cat model.Category) ([]model.RawGroup, int, error)
}

// Sender delivers a notification message to the student.
type Sender interface {
	SendMessage(text string) error
}

// Scheduler runs the monitoring pass, either once or on a ticker.
type Scheduler struct {
	cfg    *config.Config
	source GroupSource
	store  storage.Storage
	sender Sender
	log    *slog.Logger
	tick   time.Duration
}

// New creates a Scheduler. The tick interval comes from the configuration.
func New(cfg *config.Config, source GroupSource, store storage.Storage, sender Sender, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		source: source,
		store:  store,
		sender: sender,
		log:    log,
		tick:   time.Duration(cfg.CheckIntervalMinutes) * time.Minute,
	}
}

// SetTickInterval overrides the configured check interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run executes RunOnce immediately and then on every tick, blocking until
// ctx is cancelled. Run errors are logged, not propagated; a single failed
// pass must not stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		s.log.Error("run failed", "error", err)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Error("run failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single monitoring pass over all configured categories.
// An unreadable schedule file or a failed login aborts the pass; a failure
// in one category does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	busy, err := s.loadBusySchedule()
	if err != nil {
		return err
	}
	s.log.Info("busy schedule loaded", "intervals", len(busy))

	if err := s.source.Login(ctx, s.cfg.USOSUsername, s.cfg.USOSPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var errs []error
	for _, cat := range s.cfg.Categories {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.processCategory(ctx, cat, busy); err != nil {
			s.log.Error("category failed", "category", cat.Code, "error", err)
			errs = append(errs, fmt.Errorf("category %s: %w", cat.Code, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) loadBusySchedule() (model.BusySchedule, error) {
	f, err := os.Open(s.cfg.SchedulePath)
	if err != nil {
		return nil, fmt.Errorf("open schedule file: %w", err)
	}
	defer func() { _ = f.Close() }()

	busy, skipped, err := schedule.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	if skipped > 0 {
		s.log.Warn("skipped calendar events", "count", skipped)
	}
	return busy, nil
}

// processCategory runs fetch -> slot parse -> conflict filter -> diff ->
// notify -> persist for one registration category.
//
// Persistence policy: the new snapshot is saved only after the notification
// went out (or nothing needed sending), so a transient delivery failure is
// retried on the next run. PERSIST_ON_NOTIFY_FAILURE=true flips this to
// unconditional persistence, trading a possibly lost alert for no duplicates.
func (s *Scheduler) processCategory(ctx context.Context, cat model.Category, busy model.BusySchedule) error {
	raws, skipped, err := s.source.FetchGroups(ctx, cat)
	if err != nil {
		return fmt.Errorf("fetch groups: %w", err)
	}
	if skipped > 0 {
		s.log.Warn("skipped group rows", "category", cat.Code, "count", skipped)
	}

	current := model.Snapshot{}
	conflicting := 0
	for _, raw := range raws {
		slots := slot.Parse(raw.RawTimeDescription)
		if conflict.Conflicts(busy, slots) {
			conflicting++
			continue
		}
		current[raw.GroupID] = model.CourseGroup{
			GroupID:          raw.GroupID,
			RegistrationName: raw.RegistrationName,
			Slots:            slots,
			FreeSpots:        raw.FreeSpots,
			TotalSpots:       raw.TotalSpots,
			RawDescription:   raw.RawTimeDescription,
			Unverified:       len(slots) == 0,
		}
	}
	s.log.Info("groups filtered", "category", cat.Code,
		"total", len(raws), "conflicting", conflicting, "kept", len(current))

	previous, err := s.store.LoadSnapshot(ctx, cat.Code)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	events := diff.Diff(previous, current)
	s.log.Info("diff computed", "category", cat.Code, "events", len(events))

	notified := true
	if len(events) > 0 {
		msg := notify.FormatChanges(cat, events, current)
		if err := s.sender.SendMessage(msg); err != nil {
			notified = false
			s.log.Error("send notification", "category", cat.Code, "error", err)
		}
	}

	if !notified && !s.cfg.PersistOnNotifyFailure {
		s.log.Warn("snapshot not persisted, changes will be re-detected next run", "category", cat.Code)
		return nil
	}

	if err := s.store.SaveSnapshot(ctx, cat.Code, current); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
