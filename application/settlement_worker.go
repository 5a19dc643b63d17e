package application

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"ddj/domain/interfaces"
	"ddj/ratelimit"
)

// settleCheckSpec fires every 15 seconds so a round is settled shortly
// after it ends.
const settleCheckSpec = "*/15 * * * * *"

// limiterSweepSpec evicts expired rate-limit windows once a minute
const limiterSweepSpec = "0 * * * * *"

// SettlementWorker drives automatic settlement of ended rounds. Every
// tick it looks at the round before the current one and settles it if
// it has bets and no recorded result yet. Settlement itself is
// idempotent, so a failed tick is simply retried on the next one.
type SettlementWorker struct {
	uowFactory interfaces.UnitOfWorkFactory
	clock      interfaces.RoundClock
	settlement interfaces.SettlementService
	limiter    *ratelimit.Limiter
	now        func() time.Time
}

// NewSettlementWorker creates a settlement worker
func NewSettlementWorker(
	uowFactory interfaces.UnitOfWorkFactory,
	clock interfaces.RoundClock,
	settlement interfaces.SettlementService,
	limiter *ratelimit.Limiter,
) *SettlementWorker {
	return &SettlementWorker{
		uowFactory: uowFactory,
		clock:      clock,
		settlement: settlement,
		limiter:    limiter,
		now:        time.Now,
	}
}

// Start schedules the worker's cron jobs and returns a stop function
func (w *SettlementWorker) Start(ctx context.Context) (func(), error) {
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(settleCheckSpec, func() {
		if err := w.settlePreviousRound(ctx); err != nil {
			log.WithError(err).Error("Settlement tick failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule settlement check: %w", err)
	}

	if _, err := c.AddFunc(limiterSweepSpec, func() {
		if evicted := w.limiter.Sweep(); evicted > 0 {
			log.WithField("evicted", evicted).Debug("Swept rate limiter windows")
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule limiter sweep: %w", err)
	}

	c.Start()
	log.Info("Settlement worker started")

	return func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
		log.Info("Settlement worker stopped")
	}, nil
}

// settlePreviousRound settles the most recently ended round when it
// still needs settling. Rounds without bets are skipped; an operator
// can still settle them explicitly through the admin endpoint.
func (w *SettlementWorker) settlePreviousRound(ctx context.Context) error {
	info := w.clock.RoundInfo(w.now())
	roundID := info.RoundID - 1
	if roundID < 0 {
		return nil
	}

	needed, err := w.roundNeedsSettlement(ctx, roundID)
	if err != nil {
		return err
	}
	if !needed {
		return nil
	}

	summary, err := w.settlement.SettleRound(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to settle round %d: %w", roundID, err)
	}
	if summary.AlreadySettled {
		return nil
	}

	log.WithFields(log.Fields{
		"roundId":   summary.RoundID,
		"pot":       summary.Pot,
		"winners":   summary.Winners,
		"totalPaid": summary.TotalPaid,
	}).Info("Auto-settled round")
	return nil
}

func (w *SettlementWorker) roundNeedsSettlement(ctx context.Context, roundID int64) (bool, error) {
	uow := w.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := uow.RoundResultRepository().GetByRound(ctx, roundID)
	if err != nil {
		return false, fmt.Errorf("failed to check round result: %w", err)
	}
	if result != nil {
		return false, nil
	}

	hasBets, err := uow.BetRepository().RoundHasBets(ctx, roundID)
	if err != nil {
		return false, fmt.Errorf("failed to check round bets: %w", err)
	}
	return hasBets, nil
}
