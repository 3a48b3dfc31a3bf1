package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/events"
	"tournament-arena/internal/repository"
)

// DepositSweeper expires deposits the gateway never confirmed
type DepositSweeper struct {
	repo      *repository.Repository
	publisher events.Publisher
	ttl       time.Duration
	interval  time.Duration
	scheduler gocron.Scheduler
	now       func() time.Time
}

// NewDepositSweeper creates a sweeper that expires deposits pending longer than ttl.
// publisher may be nil.
func NewDepositSweeper(repo *repository.Repository, publisher events.Publisher, ttl, interval time.Duration) *DepositSweeper {
	return &DepositSweeper{
		repo:      repo,
		publisher: publisher,
		ttl:       ttl,
		interval:  interval,
		now:       time.Now,
	}
}

// Start schedules the sweep every interval
func (j *DepositSweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := j.Sweep(ctx); err != nil {
				log.WithError(err).Error("[DepositSweeper] Sweep failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule deposit sweep: %w", err)
	}

	sched.Start()
	j.scheduler = sched

	log.WithFields(log.Fields{"interval": j.interval, "ttl": j.ttl}).Info("[DepositSweeper] Started")
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep
func (j *DepositSweeper) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	log.Info("[DepositSweeper] Stopping")
	return j.scheduler.Shutdown()
}

// Sweep marks stale pending deposits expired and returns how many changed.
// Each expired deposit is announced like any other failed deposit.
func (j *DepositSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.ttl)

	expired, err := j.repo.ExpirePendingDeposits(ctx, cutoff)
	if err != nil {
		return int64(len(expired)), fmt.Errorf("failed to expire deposits: %w", err)
	}

	for _, txn := range expired {
		log.WithFields(log.Fields{
			"transaction_id": txn.ID.String(),
			"user_uid":       txn.UserUID,
			"amount":         txn.Amount.String(),
		}).Info("[DepositSweeper] Deposit expired")

		if j.publisher == nil {
			continue
		}
		event := events.New(events.SubjectDepositFailed, txn.UserUID, txn.Amount, txn.ID.String())
		if err := j.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).WithField("transaction_id", txn.ID.String()).Warn("[DepositSweeper] Failed to publish expiry")
		}
	}

	if len(expired) > 0 {
		log.WithFields(log.Fields{"expired": len(expired), "cutoff": cutoff.Format(time.RFC3339)}).Info("[DepositSweeper] Expired stale deposits")
	}
	return int64(len(expired)), nil
}
