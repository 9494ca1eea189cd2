// Package scheduler runs recurring club crawls on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/export"
	"github.com/yourusername/dupr-insight/internal/service"
)

// crawlTimeout bounds one scheduled crawl plus export.
const crawlTimeout = 2 * time.Hour

// Scheduler manages scheduled crawl jobs
type Scheduler struct {
	cron      *cron.Cron
	crawlSvc  *service.CrawlService
	writer    *export.Writer
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(crawlSvc *service.CrawlService, writer *export.Writer, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		crawlSvc: crawlSvc,
		writer:   writer,
		logger:   logger,
		jobIDs:   make([]cron.EntryID, 0),
	}
}

// ScheduleClubSync schedules a recurring crawl and export of the configured
// club.
func (s *Scheduler) ScheduleClubSync(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), crawlTimeout)
		defer cancel()

		s.logger.Info("Starting scheduled club sync")

		data, playerOrder, err := s.crawlSvc.CrawlClub(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled club sync failed")
			return
		}

		if s.writer != nil {
			path, err := s.writer.WriteClubData(data, playerOrder)
			if err != nil {
				s.logger.WithError(err).Error("Scheduled export failed")
				return
			}
			s.logger.WithField("path", path).Info("Scheduled club sync complete")
			return
		}
		s.logger.Info("Scheduled club sync complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled club sync job")

	return nil
}

// Start begins executing scheduled jobs
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop halts job scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
