package jobs

import (
	"context"
	"time"

	"github.com/dealbridge/negotiation-api/internal/config"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"go.uber.org/zap"
)

// retentionJobTimeout bounds one purge run
const retentionJobTimeout = 5 * time.Minute

// RetentionJob purges concluded negotiations older than the configured age
type RetentionJob struct {
	cfg             *config.RetentionConfig
	negotiationRepo *repository.NegotiationRepository
	logger          *zap.Logger
}

// NewRetentionJob creates a new retention job instance
func NewRetentionJob(
	cfg *config.RetentionConfig,
	negotiationRepo *repository.NegotiationRepository,
	logger *zap.Logger,
) *RetentionJob {
	return &RetentionJob{
		cfg:             cfg,
		negotiationRepo: negotiationRepo,
		logger:          logger,
	}
}

// Register adds the job to the scheduler when retention is enabled
func (j *RetentionJob) Register(scheduler *Scheduler) error {
	if !j.cfg.Enabled {
		j.logger.Info("retention job disabled")
		return nil
	}
	return scheduler.AddJob("negotiation-retention", j.cfg.Cron, j.Run)
}

// Run executes one purge pass
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), retentionJobTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.cfg.MaxAge())
	purged, err := j.negotiationRepo.DeleteConcludedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("retention purge failed", zap.Error(err))
		return
	}

	if purged > 0 {
		j.logger.Info("retention purge completed",
			zap.Int64("negotiations_purged", purged),
			zap.Time("cutoff", cutoff),
		)
	}
}
