// Package scheduler runs the two outer loops: the daily pipeline timer and
// the monitoring ticker. Cycles within each loop are strictly serialized, a
// slow cycle delays the next one instead of overlapping it.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nightfeed/nightfeed/pkg/pipeline"
)

// Pipeline runs one full pipeline cycle for a date
type Pipeline interface {
	Run(ctx context.Context, date string) (pipeline.State, error)
}

// MonitorJob runs one monitoring cycle
type MonitorJob interface {
	Run(ctx context.Context)
}

// Scheduler owns the outer loops
type Scheduler struct {
	pipeline      Pipeline
	monitor       MonitorJob
	runAtHour     int
	runAtMinute   int
	checkInterval time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
	nowFn  func() time.Time
}

// Config holds scheduler configuration
type Config struct {
	RunAtHour     int
	RunAtMinute   int
	CheckInterval time.Duration
}

// New creates a scheduler. Monitor may be nil when monitoring is disabled.
func New(p Pipeline, m MonitorJob, cfg Config) *Scheduler {
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 6 * time.Hour
	}
	return &Scheduler{
		pipeline:      p,
		monitor:       m,
		runAtHour:     cfg.RunAtHour,
		runAtMinute:   cfg.RunAtMinute,
		checkInterval: cfg.CheckInterval,
		nowFn:         time.Now,
	}
}

// Start begins the loops
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.pipelineLoop(ctx)

	if s.monitor != nil {
		s.wg.Add(1)
		go s.monitorLoop(ctx)
	}

	log.Printf("[INFO] scheduler started, pipeline at %02d:%02d, monitor every %v",
		s.runAtHour, s.runAtMinute, s.checkInterval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	log.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	log.Printf("[INFO] scheduler stopped")
}

// pipelineLoop fires the pipeline once a day at the configured wall-clock
// time. The next fire is scheduled only after the current cycle finishes.
func (s *Scheduler) pipelineLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		delay := nextRunDelay(s.nowFn(), s.runAtHour, s.runAtMinute)
		log.Printf("[INFO] next pipeline run in %v", delay.Round(time.Second))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.runPipelineCycle(ctx)
	}
}

func (s *Scheduler) runPipelineCycle(ctx context.Context) {
	date := s.nowFn().Format("2006-01-02")
	log.Printf("[INFO] pipeline cycle starting for %s", date)

	state, err := s.pipeline.Run(ctx, date)
	if err != nil {
		log.Printf("[ERROR] pipeline cycle for %s failed at stage %d: %v", date, state.Stage, err)
		return
	}
	log.Printf("[INFO] pipeline cycle for %s finished: %s", date, state.Phase)
}

// monitorLoop runs the monitoring cycle immediately and then on the ticker
func (s *Scheduler) monitorLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.monitor.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.monitor.Run(ctx)
		}
	}
}

// nextRunDelay returns the wait until the next occurrence of the wall-clock
// time, tomorrow's when today's has already passed
func nextRunDelay(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
