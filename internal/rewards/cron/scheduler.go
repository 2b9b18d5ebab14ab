package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/casaloop/casaloop-backend/internal/analytics"
	"github.com/casaloop/casaloop-backend/internal/rewards/domain"
)

// Sweeper settles finished mining sessions.
type Sweeper interface {
	SweepExpiredMining(ctx context.Context) (int, error)
}

// QuestResetter clears quest progress at period rollover.
type QuestResetter interface {
	ResetQuestProgress(ctx context.Context, counters []string, questIDs []string) error
}

// SpendReporter summarises the analytics mirror for the ops log.
type SpendReporter interface {
	TopSpenders(ctx context.Context, limit int) ([]analytics.UserSpendSummary, error)
}

// Scheduler runs the periodic reward jobs from the worker process.
type Scheduler struct {
	sweeper  Sweeper
	resets   QuestResetter
	reporter SpendReporter
	cron     *cron.Cron
}

// NewScheduler creates a Scheduler.
func NewScheduler(sweeper Sweeper, resets QuestResetter) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		resets:  resets,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// WithSpendReport enables the daily top-spenders report.
func (s *Scheduler) WithSpendReport(reporter SpendReporter) *Scheduler {
	s.reporter = reporter
	return s
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start() error {
	// Mining sweep every 10 minutes.
	if _, err := s.cron.AddFunc("0 */10 * * * *", s.runMiningSweep); err != nil {
		return err
	}

	// Daily quest reset at midnight.
	if _, err := s.cron.AddFunc("0 0 0 * * *", func() {
		s.runQuestReset(domain.PeriodDaily)
	}); err != nil {
		return err
	}

	// Weekly quest reset at midnight Monday.
	if _, err := s.cron.AddFunc("0 0 0 * * 1", func() {
		s.runQuestReset(domain.PeriodWeekly)
	}); err != nil {
		return err
	}

	// Daily spend report, shortly after the quest reset.
	if s.reporter != nil {
		if _, err := s.cron.AddFunc("0 30 0 * * *", s.runSpendReport); err != nil {
			return err
		}
	}

	log.Println("[worker] reward scheduler started")
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runMiningSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.sweeper.SweepExpiredMining(ctx); err != nil {
		log.Printf("[worker] mining sweep failed: %v", err)
	}
}

func (s *Scheduler) runSpendReport() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	top, err := s.reporter.TopSpenders(ctx, 10)
	if err != nil {
		log.Printf("[worker] spend report failed: %v", err)
		return
	}
	for i, entry := range top {
		log.Printf("[worker] top spender %d: user_id=%s total=%.2f payments=%d",
			i+1, entry.UserID, entry.TotalSpent, entry.Payments)
	}
}

func (s *Scheduler) runQuestReset(period domain.QuestPeriod) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var counters, ids []string
	for _, q := range domain.Quests {
		if q.Period == period {
			counters = append(counters, q.Counter)
			ids = append(ids, q.ID)
		}
	}

	if err := s.resets.ResetQuestProgress(ctx, counters, ids); err != nil {
		log.Printf("[worker] %s quest reset failed: %v", period, err)
		return
	}
	log.Printf("[worker] %s quest reset completed at %s", period, time.Now().Format(time.RFC1123))
}
